package application

import (
	"fmt"
	"strings"

	"github.com/storycurator/curator/internal/domain"
)

const categorySystemPrompt = `You are a children's content reviewer for an educational reading platform. You evaluate stories against one policy dimension at a time and respond only with JSON.`

const skillSystemPrompt = `You are a literacy specialist for an educational reading platform. You identify which reading skills a story exercises and respond only with JSON.`

// TaggedContent renders the document with each sentence prefixed by its
// addressable tag. The oracle refers back to sentences exclusively through
// these tag numbers.
func TaggedContent(doc domain.Document) string {
	var b strings.Builder
	for _, u := range doc.Units {
		fmt.Fprintf(&b, "<tag%d> %s\n", u.ID, u.Text)
	}
	return b.String()
}

// CategoryPrompt builds the evaluation prompt for one rubric category.
func CategoryPrompt(doc domain.Document, category domain.RubricCategory, instructions string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review the following story for %s issues only.\n\n", category.DisplayName())
	fmt.Fprintf(&b, "Target audience: %s readers.\n\n", domain.GradeName(doc.GradeLevel))

	b.WriteString("## Review criteria\n\n")
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\n## Story\n\n")
	fmt.Fprintf(&b, "Title: %s\n\n", doc.Title)
	b.WriteString(TaggedContent(doc))

	b.WriteString(`
## Response format

Respond with a JSON object:

{
  "flags": [
    {
      "issue_type": "short issue name",
      "severity_level": "Critical" | "High" | "Medium" | "Low",
      "confidence": 0.0 to 1.0,
      "tag_numbers": [sentence tag numbers the issue applies to],
      "rationale": "one or two sentences explaining the issue",
      "recommendation": "what to change, if anything"
    }
  ]
}

Reference sentences only by their tag numbers. If the story has no issues
for this dimension, return {"flags": []}.
`)
	return b.String()
}

// SkillPrompt builds the skill tagging prompt over the full taxonomy.
func SkillPrompt(doc domain.Document, taxonomy *domain.Taxonomy) string {
	var b strings.Builder

	b.WriteString("Identify which of the following reading skills this story exercises.\n\n")
	fmt.Fprintf(&b, "Target audience: %s readers.\n\n", domain.GradeName(doc.GradeLevel))

	b.WriteString("## Skill taxonomy\n\n")
	for _, s := range taxonomy.Skills() {
		fmt.Fprintf(&b, "- %s: %s", s.ID, s.Name)
		if s.Description != "" {
			fmt.Fprintf(&b, " (%s)", s.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Story\n\n")
	fmt.Fprintf(&b, "Title: %s\n\n", doc.Title)
	b.WriteString(TaggedContent(doc))

	b.WriteString(`
## Response format

Respond with a JSON object:

{
  "skill_tags": [
    {
      "skill_id": "exact skill_id from the taxonomy",
      "skill_name": "its name",
      "confidence": 0.0 to 1.0,
      "tag_numbers": [sentence tag numbers that exercise the skill],
      "rationale": "one sentence explaining the attribution"
    }
  ]
}

Use only skill_ids from the taxonomy above and reference sentences only by
their tag numbers. If no skills apply, return {"skill_tags": []}.
`)
	return b.String()
}
