// Package storage implements the filesystem repositories: the read-only
// review dataset (stories, skills, rubric) and the persisted run results.
package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/domain/segment"
)

const StoriesFile = "stories.csv"
const SkillsFile = "skills.csv"
const RubricDir = "rubrics"

// DatasetRepository reads the review dataset from a directory laid out as
// stories.csv, skills.csv and rubrics/<category>.md.
type DatasetRepository struct {
	root string
}

func NewDatasetRepository(root string) *DatasetRepository {
	return &DatasetRepository{root: root}
}

// LoadDocuments reads the story collection and segments each story's content
// into addressable sentence units.
func (r *DatasetRepository) LoadDocuments() ([]domain.Document, error) {
	path := filepath.Join(r.root, StoriesFile)
	f, err := os.Open(path) // #nosec G304 -- dataset root is operator-provided config
	if err != nil {
		return nil, fmt.Errorf("open stories: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	cols, err := headerIndex(reader, "story_id", "story_title", "grade_level", "story_content")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StoriesFile, err)
	}

	var docs []domain.Document
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", StoriesFile, line, err)
		}

		grade, err := strconv.Atoi(strings.TrimSpace(row[cols["grade_level"]]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: grade_level: %w", StoriesFile, line, err)
		}

		docs = append(docs, domain.Document{
			ID:         strings.TrimSpace(row[cols["story_id"]]),
			Title:      strings.TrimSpace(row[cols["story_title"]]),
			GradeLevel: grade,
			Units:      segment.Split(row[cols["story_content"]]),
		})
	}
	return docs, nil
}

// LoadTaxonomy reads the skill list, preserving file order.
func (r *DatasetRepository) LoadTaxonomy() (*domain.Taxonomy, error) {
	path := filepath.Join(r.root, SkillsFile)
	f, err := os.Open(path) // #nosec G304 -- dataset root is operator-provided config
	if err != nil {
		return nil, fmt.Errorf("open skills: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	cols, err := headerIndex(reader, "skill_id", "skill_name", "skill_category", "skill_description")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SkillsFile, err)
	}

	var skills []domain.Skill
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", SkillsFile, line, err)
		}
		skills = append(skills, domain.Skill{
			ID:          strings.TrimSpace(row[cols["skill_id"]]),
			Name:        strings.TrimSpace(row[cols["skill_name"]]),
			Category:    strings.TrimSpace(row[cols["skill_category"]]),
			Description: strings.TrimSpace(row[cols["skill_description"]]),
		})
	}
	return domain.NewTaxonomy(skills), nil
}

// LoadRubric reads one markdown instruction file per rubric category. Every
// category must be present; a review run with a silently missing rubric would
// report clean coverage it never earned.
func (r *DatasetRepository) LoadRubric() (domain.Rubric, error) {
	rubric := make(domain.Rubric, len(domain.AllCategories))
	for _, cat := range domain.AllCategories {
		path := filepath.Join(r.root, RubricDir, string(cat)+".md")
		data, err := os.ReadFile(path) // #nosec G304 -- dataset root is operator-provided config
		if err != nil {
			return nil, fmt.Errorf("rubric for %s: %w", cat, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, fmt.Errorf("rubric for %s is empty", cat)
		}
		rubric[cat] = text
	}
	return rubric, nil
}

// headerIndex reads the CSV header row and maps each required column name to
// its position.
func headerIndex(reader *csv.Reader, required ...string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}
