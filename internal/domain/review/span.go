package review

import (
	"sort"
	"strconv"
	"strings"

	"github.com/storycurator/curator/internal/domain"
)

// GroupFlags compresses the per-sentence merged flag mapping into evidence
// spans. Sentence IDs are walked in increasing order; a new span starts
// whenever the attribution differs from the previous unit or the ID is not
// contiguous. Spans are maximal and never overlap. Excerpts are the joined
// sentence texts so reviewers see the flagged passage in one block.
//
// This is a pure single-pass function; expanding the spans back to
// individual sentence IDs reproduces the input mapping exactly.
func GroupFlags(doc domain.Document, merged map[int]domain.MergedFlag) []domain.EvidenceSpan {
	ids := make([]int, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var spans []domain.EvidenceSpan
	var cur *domain.EvidenceSpan
	var curKey string

	for _, id := range ids {
		m := merged[id]
		key := flagAttribution(m)
		if cur != nil && id == cur.EndID+1 && key == curKey {
			cur.EndID = id
			continue
		}
		if cur != nil {
			cur.Excerpt = excerpt(doc, cur.StartID, cur.EndID)
			spans = append(spans, *cur)
		}
		prov := make([]string, len(m.Provenance))
		for i, c := range m.Provenance {
			prov[i] = string(c)
		}
		cur = &domain.EvidenceSpan{
			StartID:    id,
			EndID:      id,
			Label:      string(m.Category),
			Severity:   m.Severity,
			Confidence: m.Confidence,
			Provenance: prov,
			Rationale:  m.Rationale,
		}
		curKey = key
	}
	if cur != nil {
		cur.Excerpt = excerpt(doc, cur.StartID, cur.EndID)
		spans = append(spans, *cur)
	}
	return spans
}

// ExpandFlags is the inverse of GroupFlags, reconstructing the per-sentence
// mapping from spans. Used to verify that grouping loses nothing.
func ExpandFlags(spans []domain.EvidenceSpan) map[int]domain.MergedFlag {
	merged := make(map[int]domain.MergedFlag)
	for _, s := range spans {
		prov := make([]domain.RubricCategory, len(s.Provenance))
		for i, c := range s.Provenance {
			prov[i] = domain.RubricCategory(c)
		}
		for id := s.StartID; id <= s.EndID; id++ {
			merged[id] = domain.MergedFlag{
				Severity:   s.Severity,
				Category:   domain.RubricCategory(s.Label),
				Provenance: prov,
				Confidence: s.Confidence,
				Rationale:  s.Rationale,
			}
		}
	}
	return merged
}

// GroupSkillTags compresses each skill tag's sentence set into contiguous
// evidence spans. A tag referencing sentences {4,5,6,8} yields spans [4,6]
// and [8,8]. Spans are ordered by start ID, then skill name.
func GroupSkillTags(doc domain.Document, tags []domain.SkillTagRecord) []domain.EvidenceSpan {
	var spans []domain.EvidenceSpan
	for _, tag := range tags {
		for _, run := range contiguousRuns(tag.SentenceIDs) {
			spans = append(spans, domain.EvidenceSpan{
				StartID:    run[0],
				EndID:      run[len(run)-1],
				Label:      tag.SkillName,
				SkillID:    tag.SkillID,
				Confidence: tag.Confidence,
				Rationale:  tag.Rationale,
				Excerpt:    excerpt(doc, run[0], run[len(run)-1]),
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].StartID != spans[j].StartID {
			return spans[i].StartID < spans[j].StartID
		}
		return spans[i].Label < spans[j].Label
	})
	return spans
}

// contiguousRuns splits a sorted ID list into maximal consecutive runs.
func contiguousRuns(ids []int) [][]int {
	if len(ids) == 0 {
		return nil
	}
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	var runs [][]int
	cur := []int{sorted[0]}
	for _, id := range sorted[1:] {
		if id == cur[len(cur)-1] {
			continue // duplicate reference, same sentence
		}
		if id == cur[len(cur)-1]+1 {
			cur = append(cur, id)
			continue
		}
		runs = append(runs, cur)
		cur = []int{id}
	}
	return append(runs, cur)
}

// flagAttribution is the span-grouping identity of a merged flag. Two
// adjacent sentences join one span only when every audit-relevant field
// matches, so expansion is lossless.
func flagAttribution(m domain.MergedFlag) string {
	parts := []string{m.Severity.String(), string(m.Category), m.Rationale, strconv.FormatFloat(m.Confidence, 'f', -1, 64)}
	for _, c := range m.SortedProvenance() {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, "\x1f")
}

func excerpt(doc domain.Document, start, end int) string {
	var texts []string
	for id := start; id <= end; id++ {
		if t := doc.UnitText(id); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, " ")
}
