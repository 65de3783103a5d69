package review

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Valid lifecycle states for a document inside a review run.
const (
	StateQueued     = "queued"
	StateReviewing  = "reviewing"
	StateAggregated = "aggregated"
	StatePublished  = "published"
	StateFailed     = "failed"
)

// Lifecycle events.
const (
	EventStart     = "start"
	EventAggregate = "aggregate"
	EventPublish   = "publish"
	EventFail      = "fail"
	EventRequeue   = "requeue"
)

// LifecycleContext carries per-document state data.
type LifecycleContext struct {
	DocumentID string
}

// Lifecycle tracks a document's progress through a review run. A document
// moves queued -> reviewing -> aggregated -> published; total failure during
// review moves it to failed, from where watch mode can requeue it. Partial
// category failures do NOT fail the document; they only degrade coverage.
type Lifecycle struct {
	interpreter *statekit.Interpreter[LifecycleContext]
}

// NewLifecycle builds the state machine for one document, starting queued.
func NewLifecycle(documentID string) (*Lifecycle, error) {
	builder := statekit.NewMachine[LifecycleContext]("document-review").
		WithInitial(statekit.StateID(StateQueued)).
		WithContext(LifecycleContext{DocumentID: documentID})

	builder.State(StateQueued).
		On(EventStart).Target(StateReviewing).
		Done()

	builder.State(StateReviewing).
		On(EventAggregate).Target(StateAggregated).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateAggregated).
		On(EventPublish).Target(StatePublished).
		Done()

	builder.State(StatePublished).
		On(EventRequeue).Target(StateQueued).
		Done()

	builder.State(StateFailed).
		On(EventRequeue).Target(StateQueued).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Lifecycle{interpreter: interpreter}, nil
}

// Transition attempts to apply an event. statekit keeps the current state
// when no transition matches, so an unchanged state means the event was
// invalid here.
func (l *Lifecycle) Transition(event string) error {
	before := l.Current()
	l.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := l.Current()

	if before != after {
		return nil
	}
	return fmt.Errorf("event %q is not valid in state %q", event, before)
}

// Current returns the current lifecycle state.
func (l *Lifecycle) Current() string {
	return string(l.interpreter.State().Value)
}
