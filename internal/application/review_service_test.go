package application_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/storycurator/curator/internal/application"
	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/infrastructure/oracle"
)

// fakeOracle answers each evaluation from a canned script keyed by rubric
// category ("skills" for the tagging pass), and tracks peak concurrency.
type fakeOracle struct {
	responses map[string]string
	errors    map[string]error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeOracle) ID() string { return "fake" }

func (f *fakeOracle) Evaluate(ctx context.Context, req oracle.Request) (*oracle.Response, error) {
	cur := f.inFlight.Add(1)
	for {
		max := f.maxInFlight.Load()
		if cur <= max || f.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	defer f.inFlight.Add(-1)
	time.Sleep(2 * time.Millisecond)

	key := keyFor(req.Prompt)
	if err, ok := f.errors[key]; ok {
		return nil, err
	}
	if text, ok := f.responses[key]; ok {
		return &oracle.Response{Text: text, Model: "fake"}, nil
	}
	if key == "skills" {
		return &oracle.Response{Text: `{"skill_tags": []}`, Model: "fake"}, nil
	}
	return &oracle.Response{Text: `{"flags": []}`, Model: "fake"}, nil
}

func keyFor(prompt string) string {
	if strings.Contains(prompt, "skill_tags") {
		return "skills"
	}
	for _, cat := range domain.AllCategories {
		if strings.Contains(prompt, "for "+cat.DisplayName()+" issues") {
			return string(cat)
		}
	}
	return "unknown"
}

func testRubric() domain.Rubric {
	r := make(domain.Rubric, len(domain.AllCategories))
	for _, cat := range domain.AllCategories {
		r[cat] = "Flag anything unsuitable along this dimension."
	}
	return r
}

func testTaxonomy() *domain.Taxonomy {
	return domain.NewTaxonomy([]domain.Skill{
		{ID: "SKILL-COMP-003", Name: "Character Analysis", Category: "Comprehension"},
		{ID: "SKILL-VOCAB-001", Name: "Context Clues", Category: "Vocabulary"},
	})
}

func testDocument(id string) domain.Document {
	return domain.Document{
		ID:         id,
		Title:      "The Lantern",
		GradeLevel: 2,
		Units: []domain.SentenceUnit{
			{ID: 1, Text: "Mira found a lantern."},
			{ID: 2, Text: "The older kids dared her to climb the fence."},
			{ID: 3, Text: "She lit a match near the dry hay."},
			{ID: 4, Text: "Her brother pulled her back."},
			{ID: 5, Text: "They walked home together."},
			{ID: 6, Text: "The lantern stayed dark."},
		},
	}
}

func TestReviewAll_MergesAcrossCategories(t *testing.T) {
	fake := &fakeOracle{
		responses: map[string]string{
			"violence_harm": `{"flags": [
				{"severity_level": "High", "confidence": 0.8, "tag_numbers": [2, 3],
				 "rationale": "risky dare", "recommendation": "soften"}
			]}`,
			"critical_safety": `{"flags": [
				{"severity_level": "Critical", "confidence": 0.95, "tag_numbers": [3],
				 "rationale": "fire hazard shown without consequence"}
			]}`,
			"skills": `{"skill_tags": [
				{"skill_id": "SKILL-COMP-003", "skill_name": "wrong name", "confidence": 0.9,
				 "tag_numbers": [1, 2, 3], "rationale": "character choices"}
			]}`,
		},
	}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{})

	run, err := svc.ReviewAll(context.Background(), []domain.Document{testDocument("story-1")}, testRubric(), testTaxonomy())
	if err != nil {
		t.Fatalf("ReviewAll failed: %v", err)
	}

	result, ok := run.Results["story-1"]
	if !ok {
		t.Fatal("missing result for story-1")
	}
	if !result.HasCritical {
		t.Error("expected has_critical")
	}
	if got := len(result.DegradedCategories()); got != 0 {
		t.Errorf("degraded categories = %v, want none", result.DegradedCategories())
	}

	wantFlags := []domain.EvidenceSpan{
		{
			StartID: 2, EndID: 2,
			Label:      "violence_harm",
			Severity:   domain.SeverityHigh,
			Confidence: 0.8,
			Provenance: []string{"violence_harm"},
			Rationale:  "risky dare",
			Excerpt:    "The older kids dared her to climb the fence.",
		},
		{
			StartID: 3, EndID: 3,
			Label:      "critical_safety",
			Severity:   domain.SeverityCritical,
			Confidence: 0.95,
			Provenance: []string{"critical_safety", "violence_harm"},
			Rationale:  "fire hazard shown without consequence",
			Excerpt:    "She lit a match near the dry hay.",
		},
	}
	if diff := cmp.Diff(wantFlags, result.Flags); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}

	if len(result.Skills) != 1 {
		t.Fatalf("skills = %v, want one span", result.Skills)
	}
	skill := result.Skills[0]
	if skill.StartID != 1 || skill.EndID != 3 || skill.SkillID != "SKILL-COMP-003" {
		t.Errorf("skill span = %+v", skill)
	}
	if skill.Label != "Character Analysis" {
		t.Errorf("skill name %q should come from the taxonomy, not the response", skill.Label)
	}
}

func TestReviewAll_FailedCategoryDegradesCoverage(t *testing.T) {
	fake := &fakeOracle{
		responses: map[string]string{
			"violence_harm": `{"flags": [
				{"severity_level": "Medium", "confidence": 0.6, "tag_numbers": [2], "rationale": "dare"}
			]}`,
		},
		errors: map[string]error{
			"technical_issues": &oracle.Error{Kind: oracle.KindExhausted, Op: "fake"},
		},
	}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{})

	run, err := svc.ReviewAll(context.Background(), []domain.Document{testDocument("story-1")}, testRubric(), testTaxonomy())
	if err != nil {
		t.Fatalf("a failed category must not abort the run: %v", err)
	}

	result := run.Results["story-1"]
	want := []string{"technical_issues"}
	if diff := cmp.Diff(want, result.DegradedCategories()); diff != "" {
		t.Errorf("degraded categories (-want +got):\n%s", diff)
	}
	if result.Coverage["violence_harm"] != domain.CoverageComplete {
		t.Errorf("violence_harm coverage = %s", result.Coverage["violence_harm"])
	}
	if len(result.Flags) != 1 {
		t.Errorf("flags from healthy categories must survive, got %v", result.Flags)
	}
}

func TestReviewAll_DropsInvalidRecords(t *testing.T) {
	fake := &fakeOracle{
		responses: map[string]string{
			"emotional_safety": `{"flags": [
				{"severity_level": "Extreme", "confidence": 0.9, "tag_numbers": [1], "rationale": "bad severity"},
				{"severity_level": "Low", "confidence": 0.5, "tag_numbers": [99], "rationale": "bad reference"},
				{"severity_level": "Low", "confidence": 7.5, "tag_numbers": [99, 4], "rationale": "partly valid"}
			]}`,
			"skills": `{"skill_tags": [
				{"skill_id": "SKILL-MADEUP-001", "confidence": 0.9, "tag_numbers": [1]},
				{"skill_id": "SKILL-VOCAB-001", "confidence": -0.2, "tag_numbers": [5]}
			]}`,
		},
	}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{})

	run, err := svc.ReviewAll(context.Background(), []domain.Document{testDocument("story-1")}, testRubric(), testTaxonomy())
	if err != nil {
		t.Fatalf("ReviewAll failed: %v", err)
	}

	result := run.Results["story-1"]
	if len(result.Flags) != 1 {
		t.Fatalf("flags = %+v, want only the partly valid record", result.Flags)
	}
	flag := result.Flags[0]
	if flag.StartID != 4 || flag.EndID != 4 {
		t.Errorf("flag span = [%d,%d], want the surviving reference [4,4]", flag.StartID, flag.EndID)
	}
	if flag.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", flag.Confidence)
	}
	if result.Coverage["emotional_safety"] != domain.CoverageComplete {
		t.Error("dropped records must not degrade coverage")
	}

	if len(result.Skills) != 1 {
		t.Fatalf("skills = %+v, want unknown skill dropped", result.Skills)
	}
	if result.Skills[0].Confidence != 0 {
		t.Errorf("skill confidence = %v, want clamped to 0", result.Skills[0].Confidence)
	}
}

func TestReviewAll_MissingSeverityDropsOnlyThatRecord(t *testing.T) {
	fake := &fakeOracle{
		responses: map[string]string{
			"critical_safety": `{"flags": [
				{"tag_numbers": [1], "rationale": "no severity given"},
				{"severity_level": "Critical", "confidence": 0.9, "tag_numbers": [3], "rationale": "fire hazard"}
			]}`,
		},
	}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{})

	run, err := svc.ReviewAll(context.Background(), []domain.Document{testDocument("story-1")}, testRubric(), testTaxonomy())
	if err != nil {
		t.Fatalf("ReviewAll failed: %v", err)
	}

	result := run.Results["story-1"]
	if len(result.Flags) != 1 {
		t.Fatalf("flags = %+v, want only the valid record to survive", result.Flags)
	}
	flag := result.Flags[0]
	if flag.StartID != 3 || flag.Severity != domain.SeverityCritical {
		t.Errorf("flag = %+v, want the Critical record on sentence 3", flag)
	}
	if !result.HasCritical {
		t.Error("the surviving Critical record must still set has_critical")
	}
	if result.Coverage["critical_safety"] != domain.CoverageComplete {
		t.Error("a dropped record must not degrade category coverage")
	}
}

func TestReviewAll_RespectsConcurrencyBounds(t *testing.T) {
	fake := &fakeOracle{}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{
		DocumentWorkers: 2,
		CategoryWorkers: 3,
	})

	docs := make([]domain.Document, 6)
	for i := range docs {
		docs[i] = testDocument(fmt.Sprintf("story-%d", i))
	}

	run, err := svc.ReviewAll(context.Background(), docs, testRubric(), testTaxonomy())
	if err != nil {
		t.Fatalf("ReviewAll failed: %v", err)
	}
	if len(run.Results) != len(docs) {
		t.Errorf("results = %d, want %d", len(run.Results), len(docs))
	}
	if peak := fake.maxInFlight.Load(); peak > 6 {
		t.Errorf("peak concurrent oracle calls = %d, want at most 2 documents x 3 categories", peak)
	}
}

func TestReviewAll_OnDocumentHook(t *testing.T) {
	fake := &fakeOracle{}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{})

	var mu sync.Mutex
	var seen []string
	svc.OnDocument(func(r domain.DocumentResult) {
		mu.Lock()
		seen = append(seen, r.DocumentID)
		mu.Unlock()
	})

	docs := []domain.Document{testDocument("story-a"), testDocument("story-b")}
	if _, err := svc.ReviewAll(context.Background(), docs, testRubric(), testTaxonomy()); err != nil {
		t.Fatalf("ReviewAll failed: %v", err)
	}

	if len(seen) != 2 {
		t.Errorf("hook fired %d times, want once per document", len(seen))
	}
}

func TestReviewAll_CancelledContext(t *testing.T) {
	fake := &fakeOracle{}
	svc := application.NewReviewService(fake, nil, application.ReviewOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ReviewAll(ctx, []domain.Document{testDocument("story-1")}, testRubric(), testTaxonomy())
	if err == nil {
		t.Fatal("expected context error")
	}
}
