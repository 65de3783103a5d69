package domain

import "strings"

// Skill is one entry of the reading-skill taxonomy.
type Skill struct {
	ID          string `json:"skill_id"`
	Name        string `json:"skill_name"`
	Category    string `json:"skill_category"`
	Description string `json:"skill_description"`
}

// Taxonomy is the enumerated skill set a story can be tagged with. The skill
// evaluator rejects any oracle-returned skill not present here.
type Taxonomy struct {
	skills []Skill
	byID   map[string]Skill
}

// NewTaxonomy builds a taxonomy from the loaded skill list, preserving order.
func NewTaxonomy(skills []Skill) *Taxonomy {
	byID := make(map[string]Skill, len(skills))
	for _, s := range skills {
		byID[s.ID] = s
	}
	return &Taxonomy{skills: skills, byID: byID}
}

// Skills returns all taxonomy entries in load order.
func (t *Taxonomy) Skills() []Skill { return t.skills }

// Lookup returns the skill with the given ID and whether it exists.
func (t *Taxonomy) Lookup(id string) (Skill, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// Len returns the number of skills in the taxonomy.
func (t *Taxonomy) Len() int { return len(t.skills) }

// skillCategoryNames maps skill ID infixes to display categories, used by the
// report layer for grouping and coloring.
var skillCategoryNames = map[string]string{
	"DEC":     "Decoding",
	"COMP":    "Comprehension",
	"VOCAB":   "Vocabulary",
	"KNOW":    "Knowledge",
	"FLUENCY": "Fluency",
}

// DisplayCategory derives the display category from a skill ID of the form
// "SKILL-<GROUP>-<NNN>". Unrecognized groups map to "Unknown".
func DisplayCategory(skillID string) string {
	parts := strings.Split(skillID, "-")
	if len(parts) >= 2 {
		if name, ok := skillCategoryNames[parts[1]]; ok {
			return name
		}
	}
	return "Unknown"
}
