package domain

import "sort"

// FlagRecord is one policy judgment produced by a single category evaluation.
// Immutable once produced. SentenceIDs is a sorted, non-empty subset of the
// document's valid IDs; the evaluator drops out-of-range references before a
// record reaches the aggregator.
type FlagRecord struct {
	Category       RubricCategory `json:"category"`
	Severity       Severity       `json:"severity"`
	SentenceIDs    []int          `json:"sentence_ids"`
	Confidence     float64        `json:"confidence"`
	Rationale      string         `json:"rationale"`
	Recommendation string         `json:"recommendation,omitempty"`
}

// SkillTagRecord is one skill attribution produced by the skill evaluation.
type SkillTagRecord struct {
	SkillID     string  `json:"skill_id"`
	SkillName   string  `json:"skill_name"`
	Confidence  float64 `json:"confidence"`
	SentenceIDs []int   `json:"sentence_ids"`
	Rationale   string  `json:"rationale"`
}

// MergedFlag is the per-sentence resolution of all flag records referencing
// that sentence. It retains the highest-precedence severity seen and the full
// set of contributing categories for audit.
type MergedFlag struct {
	Severity   Severity         `json:"severity"`
	Category   RubricCategory   `json:"category"`
	Provenance []RubricCategory `json:"provenance"`
	Confidence float64          `json:"confidence"`
	Rationale  string           `json:"rationale"`
}

// SortedProvenance returns the provenance set in deterministic order.
func (m MergedFlag) SortedProvenance() []RubricCategory {
	out := make([]RubricCategory, len(m.Provenance))
	copy(out, m.Provenance)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EvidenceSpan is a maximal run of consecutive sentence IDs sharing one
// attribution: a (category, severity) pair for flags, a skill for skill tags.
// Spans for a given attribution never overlap and no two adjacent spans share
// the same attribution.
type EvidenceSpan struct {
	StartID    int      `json:"start_id"`
	EndID      int      `json:"end_id"`
	Label      string   `json:"label"`
	SkillID    string   `json:"skill_id,omitempty"`
	Severity   Severity `json:"severity,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Provenance []string `json:"provenance,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
}

// Len returns the number of sentence units the span covers.
func (s EvidenceSpan) Len() int { return s.EndID - s.StartID + 1 }

// CoverageState records whether a category evaluation completed for a
// document. Degraded coverage means the oracle failed permanently for that
// category and its flags are missing, not that the document is clean.
type CoverageState string

const (
	CoverageComplete CoverageState = "complete"
	CoverageDegraded CoverageState = "degraded"
)

// DocumentResult is the canonical per-document output of the engine. Built
// once per run and never mutated afterwards; the report layer works on its
// own copy.
type DocumentResult struct {
	DocumentID  string                   `json:"document_id"`
	Title       string                   `json:"story_title"`
	GradeLevel  int                      `json:"grade_level"`
	Flags       []EvidenceSpan           `json:"flags"`
	Skills      []EvidenceSpan           `json:"skills"`
	HasCritical bool                     `json:"has_critical"`
	Coverage    map[string]CoverageState `json:"coverage"`
}

// DegradedCategories lists categories with degraded coverage, sorted.
func (r DocumentResult) DegradedCategories() []string {
	var out []string
	for cat, state := range r.Coverage {
		if state == CoverageDegraded {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}

// ReviewRun is the full outcome of one pipeline run over a document batch.
type ReviewRun struct {
	RunID   string                    `json:"run_id"`
	Results map[string]DocumentResult `json:"results"`
}
