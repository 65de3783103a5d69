package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies oracle failures for the propagation policy: transient
// kinds are retried inside the adapter and never escape it; malformed and
// exhausted escape to the evaluator as a typed failure for that single unit
// of work.
type ErrorKind int

const (
	// KindTransient covers timeouts, rate limiting and 5xx responses.
	KindTransient ErrorKind = iota
	// KindMalformedResponse covers schema violations in an otherwise
	// successful call. Never retried: the same prompt tends to produce the
	// same malformation.
	KindMalformedResponse
	// KindExhausted marks a transient failure that survived the full retry
	// budget.
	KindExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindMalformedResponse:
		return "malformed_response"
	case KindExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a typed oracle failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("oracle %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an oracle Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Kind == kind
}

// IsTransient reports whether err should be retried. Besides explicitly
// tagged errors this covers deadline expiry and network timeouts from the
// transport.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsKind(err, KindTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func transientf(op, format string, args ...any) error {
	return &Error{Kind: KindTransient, Op: op, Err: fmt.Errorf(format, args...)}
}

func malformedf(op, format string, args ...any) error {
	return &Error{Kind: KindMalformedResponse, Op: op, Err: fmt.Errorf(format, args...)}
}
