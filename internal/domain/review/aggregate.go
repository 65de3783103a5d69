// Package review holds the pure result-merging core of the engine: severity
// aggregation across categories, evidence span grouping, and the
// per-document review lifecycle.
package review

import (
	"github.com/storycurator/curator/internal/domain"
)

// Aggregate merges all flag records for one document into a per-sentence
// mapping. For each sentence a record references, the merged flag keeps the
// highest-precedence severity seen; every contributing category is added to
// provenance regardless of the severity outcome. A sentence that is Medium
// under one category and Critical under another surfaces as Critical, and
// the categorical breakdown stays retrievable for audit.
//
// The result is independent of record arrival order: severity ties keep the
// lexicographically first category label, so two runs with shuffled inputs
// produce identical output.
func Aggregate(records []domain.FlagRecord) map[int]domain.MergedFlag {
	merged := make(map[int]domain.MergedFlag)

	for _, rec := range records {
		for _, id := range rec.SentenceIDs {
			cur, ok := merged[id]
			if !ok {
				merged[id] = domain.MergedFlag{
					Severity:   rec.Severity,
					Category:   rec.Category,
					Provenance: []domain.RubricCategory{rec.Category},
					Confidence: rec.Confidence,
					Rationale:  rec.Rationale,
				}
				continue
			}

			cur.Provenance = addProvenance(cur.Provenance, rec.Category)

			replace := rec.Severity.Outranks(cur.Severity) ||
				(rec.Severity == cur.Severity && rec.Category < cur.Category)
			if replace {
				cur.Severity = rec.Severity
				cur.Category = rec.Category
				cur.Confidence = rec.Confidence
				cur.Rationale = rec.Rationale
			}
			merged[id] = cur
		}
	}

	for id, m := range merged {
		m.Provenance = m.SortedProvenance()
		merged[id] = m
	}
	return merged
}

// HasCritical reports whether any merged flag carries Critical severity.
func HasCritical(merged map[int]domain.MergedFlag) bool {
	for _, m := range merged {
		if m.Severity == domain.SeverityCritical {
			return true
		}
	}
	return false
}

func addProvenance(set []domain.RubricCategory, cat domain.RubricCategory) []domain.RubricCategory {
	for _, c := range set {
		if c == cat {
			return set
		}
	}
	return append(set, cat)
}
