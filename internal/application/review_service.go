package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/domain/review"
	"github.com/storycurator/curator/internal/infrastructure/oracle"
)

const (
	// DefaultDocumentWorkers bounds how many documents are reviewed at once.
	DefaultDocumentWorkers = 5
	// DefaultCategoryWorkers bounds concurrent oracle calls within one
	// document: the seven rubric categories plus the skill pass.
	DefaultCategoryWorkers = 7

	defaultTemperature = 0.1
	defaultMaxTokens   = 4096
)

// ReviewOptions tunes the orchestration of a review run. Zero values fall
// back to the defaults above.
type ReviewOptions struct {
	DocumentWorkers int
	CategoryWorkers int
	Temperature     float32
	MaxTokens       int
}

// ReviewService runs the full review pipeline over a batch of documents:
// per-category flag evaluation and skill tagging fan out through the oracle,
// then per-document aggregation merges the results into spans.
type ReviewService struct {
	provider oracle.Provider
	logger   *zap.Logger
	opts     ReviewOptions

	onDocument func(domain.DocumentResult)
}

func NewReviewService(provider oracle.Provider, logger *zap.Logger, opts ReviewOptions) *ReviewService {
	if opts.DocumentWorkers <= 0 {
		opts.DocumentWorkers = DefaultDocumentWorkers
	}
	if opts.CategoryWorkers <= 0 {
		opts.CategoryWorkers = DefaultCategoryWorkers
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		provider: provider,
		logger:   logger,
		opts:     opts,
	}
}

// OnDocument registers a hook invoked with each finished document result, in
// completion order. Used by the streaming layer; must be set before ReviewAll.
func (s *ReviewService) OnDocument(fn func(domain.DocumentResult)) {
	s.onDocument = fn
}

// ReviewAll reviews every document in the batch and returns the run. Document
// reviews proceed in parallel up to DocumentWorkers; results are keyed by
// document ID, so batch ordering never affects the outcome. The only error
// returned is context cancellation: individual oracle failures degrade
// category coverage instead of aborting the run.
func (s *ReviewService) ReviewAll(ctx context.Context, docs []domain.Document, rubric domain.Rubric, taxonomy *domain.Taxonomy) (*domain.ReviewRun, error) {
	run := &domain.ReviewRun{
		RunID:   uuid.NewString(),
		Results: make(map[string]domain.DocumentResult, len(docs)),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.opts.DocumentWorkers)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			result := s.reviewDocument(ctx, doc, rubric, taxonomy)

			mu.Lock()
			run.Results[doc.ID] = result
			mu.Unlock()

			if s.onDocument != nil {
				s.onDocument(result)
			}
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return run, nil
}

type categoryOutcome struct {
	category domain.RubricCategory
	records  []domain.FlagRecord
	err      error
}

// reviewDocument fans out one oracle call per rubric category plus one skill
// pass, waits for all of them, then aggregates. Category goroutines never
// fail the group; each writes its outcome slot and a failed category shows up
// as degraded coverage with zero flags.
func (s *ReviewService) reviewDocument(ctx context.Context, doc domain.Document, rubric domain.Rubric, taxonomy *domain.Taxonomy) domain.DocumentResult {
	lc, err := review.NewLifecycle(doc.ID)
	if err != nil {
		s.logger.Warn("lifecycle unavailable", zap.String("document", doc.ID), zap.Error(err))
	}
	s.transition(lc, doc.ID, review.EventStart)

	outcomes := make([]categoryOutcome, len(domain.AllCategories))
	var skillRecords []domain.SkillTagRecord
	var skillErr error

	var g errgroup.Group
	g.SetLimit(s.opts.CategoryWorkers)

	for i, cat := range domain.AllCategories {
		i, cat := i, cat
		g.Go(func() error {
			records, err := s.evaluateCategory(ctx, doc, cat, rubric)
			outcomes[i] = categoryOutcome{category: cat, records: records, err: err}
			return nil
		})
	}
	g.Go(func() error {
		skillRecords, skillErr = s.evaluateSkills(ctx, doc, taxonomy)
		return nil
	})

	// Aggregation barrier: nothing below runs until every category and the
	// skill pass have finished or failed.
	_ = g.Wait()

	coverage := make(map[string]domain.CoverageState, len(outcomes))
	var flags []domain.FlagRecord
	for _, oc := range outcomes {
		if oc.err != nil {
			coverage[string(oc.category)] = domain.CoverageDegraded
			s.logger.Warn("category evaluation failed",
				zap.String("document", doc.ID),
				zap.String("category", string(oc.category)),
				zap.Error(oc.err))
			continue
		}
		coverage[string(oc.category)] = domain.CoverageComplete
		flags = append(flags, oc.records...)
	}
	if skillErr != nil {
		s.logger.Warn("skill evaluation failed",
			zap.String("document", doc.ID), zap.Error(skillErr))
		skillRecords = nil
	}

	s.transition(lc, doc.ID, review.EventAggregate)

	merged := review.Aggregate(flags)
	result := domain.DocumentResult{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		GradeLevel:  doc.GradeLevel,
		Flags:       review.GroupFlags(doc, merged),
		Skills:      review.GroupSkillTags(doc, skillRecords),
		HasCritical: review.HasCritical(merged),
		Coverage:    coverage,
	}

	s.transition(lc, doc.ID, review.EventPublish)
	return result
}

func (s *ReviewService) transition(lc *review.Lifecycle, docID, event string) {
	if lc == nil {
		return
	}
	if err := lc.Transition(event); err != nil {
		s.logger.Warn("lifecycle transition rejected",
			zap.String("document", docID),
			zap.String("event", event),
			zap.Error(err))
	}
}

// evaluateCategory runs one rubric category through the oracle and converts
// the validated response into flag records. Responses may reference sentences
// the document does not have, severities outside the domain, or confidences
// outside [0,1]; those are repaired or dropped here so only well-formed
// records reach the aggregator.
func (s *ReviewService) evaluateCategory(ctx context.Context, doc domain.Document, category domain.RubricCategory, rubric domain.Rubric) ([]domain.FlagRecord, error) {
	instructions, ok := rubric.Instructions(category)
	if !ok {
		return nil, fmt.Errorf("no rubric instructions for category %s", category)
	}

	resp, err := s.provider.Evaluate(ctx, oracle.Request{
		DocumentID:  doc.ID,
		System:      categorySystemPrompt,
		Prompt:      CategoryPrompt(doc, category, instructions),
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	raw, err := oracle.ParseFlagResponse(resp.Text)
	if err != nil {
		return nil, err
	}

	records := make([]domain.FlagRecord, 0, len(raw))
	for _, rf := range raw {
		severity, err := domain.ParseSeverity(rf.SeverityLevel)
		if err != nil {
			s.logger.Warn("dropping flag with unknown severity",
				zap.String("document", doc.ID),
				zap.String("category", string(category)),
				zap.String("severity", rf.SeverityLevel))
			continue
		}
		ids := s.validIDs(doc, category, rf.TagNumbers)
		if len(ids) == 0 {
			s.logger.Warn("dropping flag with no valid sentence references",
				zap.String("document", doc.ID),
				zap.String("category", string(category)))
			continue
		}
		records = append(records, domain.FlagRecord{
			Category:       category,
			Severity:       severity,
			SentenceIDs:    ids,
			Confidence:     clampConfidence(rf.Confidence),
			Rationale:      rf.Rationale,
			Recommendation: rf.Recommendation,
		})
	}
	return records, nil
}

// evaluateSkills runs the skill tagging pass. Skill IDs not present in the
// taxonomy are dropped; names always come from the taxonomy entry, never from
// the oracle.
func (s *ReviewService) evaluateSkills(ctx context.Context, doc domain.Document, taxonomy *domain.Taxonomy) ([]domain.SkillTagRecord, error) {
	resp, err := s.provider.Evaluate(ctx, oracle.Request{
		DocumentID:  doc.ID,
		System:      skillSystemPrompt,
		Prompt:      SkillPrompt(doc, taxonomy),
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	raw, err := oracle.ParseSkillResponse(resp.Text)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SkillTagRecord, 0, len(raw))
	for _, rt := range raw {
		skill, ok := taxonomy.Lookup(rt.SkillID)
		if !ok {
			s.logger.Warn("dropping tag with unknown skill",
				zap.String("document", doc.ID),
				zap.String("skill_id", rt.SkillID))
			continue
		}
		ids := s.validIDs(doc, "skills", rt.TagNumbers)
		if len(ids) == 0 {
			s.logger.Warn("dropping skill tag with no valid sentence references",
				zap.String("document", doc.ID),
				zap.String("skill_id", rt.SkillID))
			continue
		}
		records = append(records, domain.SkillTagRecord{
			SkillID:     skill.ID,
			SkillName:   skill.Name,
			Confidence:  clampConfidence(rt.Confidence),
			SentenceIDs: ids,
			Rationale:   rt.Rationale,
		})
	}
	return records, nil
}

// validIDs normalizes oracle tag numbers and drops references outside the
// document's sentence range.
func (s *ReviewService) validIDs(doc domain.Document, source domain.RubricCategory, tags oracle.TagNumbers) []int {
	var out, dropped []int
	for _, id := range tags.Normalized() {
		if doc.ValidID(id) {
			out = append(out, id)
		} else {
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		s.logger.Warn("dropping out-of-range sentence references",
			zap.String("document", doc.ID),
			zap.String("source", string(source)),
			zap.Ints("ids", dropped))
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
