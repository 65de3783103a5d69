package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/infrastructure/storage"
)

var (
	_ domain.DatasetRepository = (*storage.DatasetRepository)(nil)
	_ domain.ResultRepository  = (*storage.ResultRepository)(nil)
)

func writeDataset(t *testing.T, root string) {
	t.Helper()

	stories := `story_id,story_title,grade_level,story_content
story-1,The Lantern,2,"Mira found a lantern. It would not light."
story-2,First Day,0,"Sam waved goodbye at the gate."
`
	if err := os.WriteFile(filepath.Join(root, storage.StoriesFile), []byte(stories), 0600); err != nil {
		t.Fatal(err)
	}

	skills := `skill_id,skill_name,skill_category,skill_description
SKILL-COMP-003,Character Analysis,Comprehension,Understanding character motivation
SKILL-VOCAB-001,Context Clues,Vocabulary,Inferring word meaning from context
`
	if err := os.WriteFile(filepath.Join(root, storage.SkillsFile), []byte(skills), 0600); err != nil {
		t.Fatal(err)
	}

	rubricDir := filepath.Join(root, storage.RubricDir)
	if err := os.MkdirAll(rubricDir, 0700); err != nil {
		t.Fatal(err)
	}
	for _, cat := range domain.AllCategories {
		path := filepath.Join(rubricDir, string(cat)+".md")
		if err := os.WriteFile(path, []byte("# "+cat.DisplayName()+"\n\nFlag anything unsuitable.\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDatasetRepository_LoadDocuments(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root)

	repo := storage.NewDatasetRepository(root)
	docs, err := repo.LoadDocuments()
	if err != nil {
		t.Fatalf("LoadDocuments failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}

	want := domain.Document{
		ID:         "story-1",
		Title:      "The Lantern",
		GradeLevel: 2,
		Units: []domain.SentenceUnit{
			{ID: 1, Text: "Mira found a lantern."},
			{ID: 2, Text: "It would not light."},
		},
	}
	if diff := cmp.Diff(want, docs[0]); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
	if docs[1].GradeLevel != 0 {
		t.Errorf("grade level = %d, want kindergarten", docs[1].GradeLevel)
	}
}

func TestDatasetRepository_LoadDocuments_MissingColumn(t *testing.T) {
	root := t.TempDir()
	stories := "story_id,story_title,story_content\nstory-1,The Lantern,text\n"
	if err := os.WriteFile(filepath.Join(root, storage.StoriesFile), []byte(stories), 0600); err != nil {
		t.Fatal(err)
	}

	repo := storage.NewDatasetRepository(root)
	if _, err := repo.LoadDocuments(); err == nil {
		t.Error("expected error for missing grade_level column")
	}
}

func TestDatasetRepository_LoadTaxonomy(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root)

	repo := storage.NewDatasetRepository(root)
	taxonomy, err := repo.LoadTaxonomy()
	if err != nil {
		t.Fatalf("LoadTaxonomy failed: %v", err)
	}
	if taxonomy.Len() != 2 {
		t.Fatalf("taxonomy size = %d, want 2", taxonomy.Len())
	}
	skill, ok := taxonomy.Lookup("SKILL-COMP-003")
	if !ok {
		t.Fatal("missing SKILL-COMP-003")
	}
	if skill.Name != "Character Analysis" || skill.Category != "Comprehension" {
		t.Errorf("skill = %+v", skill)
	}
}

func TestDatasetRepository_LoadRubric(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root)

	repo := storage.NewDatasetRepository(root)
	rubric, err := repo.LoadRubric()
	if err != nil {
		t.Fatalf("LoadRubric failed: %v", err)
	}
	for _, cat := range domain.AllCategories {
		text, ok := rubric.Instructions(cat)
		if !ok || text == "" {
			t.Errorf("missing rubric for %s", cat)
		}
	}
}

func TestDatasetRepository_LoadRubric_MissingCategory(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root)
	if err := os.Remove(filepath.Join(root, storage.RubricDir, "violence_harm.md")); err != nil {
		t.Fatal(err)
	}

	repo := storage.NewDatasetRepository(root)
	if _, err := repo.LoadRubric(); err == nil {
		t.Error("expected error for missing rubric file")
	}
}

func TestResultRepository_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	repo := storage.NewResultRepository(root)

	run := &domain.ReviewRun{
		RunID: "run-1",
		Results: map[string]domain.DocumentResult{
			"story-1": {
				DocumentID:  "story-1",
				Title:       "The Lantern",
				GradeLevel:  2,
				HasCritical: true,
				Flags: []domain.EvidenceSpan{
					{StartID: 3, EndID: 3, Label: "critical_safety", Severity: domain.SeverityCritical, Confidence: 0.9},
				},
				Coverage: map[string]domain.CoverageState{
					"critical_safety":  domain.CoverageComplete,
					"technical_issues": domain.CoverageDegraded,
				},
			},
		},
	}

	if err := repo.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	archive := filepath.Join(root, storage.RunsDir, "run-1.json")
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("run archive not written: %v", err)
	}

	loaded, err := repo.LoadLatestRun()
	if err != nil {
		t.Fatalf("LoadLatestRun failed: %v", err)
	}
	if diff := cmp.Diff(run, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestResultRepository_SaveRun_RequiresID(t *testing.T) {
	repo := storage.NewResultRepository(t.TempDir())
	if err := repo.SaveRun(&domain.ReviewRun{}); err == nil {
		t.Error("expected error for run without ID")
	}
}

func TestResultRepository_LoadLatestRun_Missing(t *testing.T) {
	repo := storage.NewResultRepository(t.TempDir())
	if _, err := repo.LoadLatestRun(); err == nil {
		t.Error("expected error when no results exist")
	}
}
