package domain

import "strings"

// RubricCategory names one of the fixed policy dimensions a story is
// reviewed against. Each category is evaluated by an independent oracle call.
type RubricCategory string

const (
	CategoryCriticalSafety      RubricCategory = "critical_safety"
	CategoryViolenceHarm        RubricCategory = "violence_harm"
	CategoryAgeAppropriateness  RubricCategory = "age_appropriateness"
	CategoryCulturalSensitivity RubricCategory = "cultural_sensitivity"
	CategoryEmotionalSafety     RubricCategory = "emotional_safety"
	CategoryTechnicalIssues     RubricCategory = "technical_issues"
	CategoryPhysicalSafety      RubricCategory = "physical_safety"
)

// AllCategories is the fixed review set, in canonical order.
var AllCategories = []RubricCategory{
	CategoryCriticalSafety,
	CategoryViolenceHarm,
	CategoryAgeAppropriateness,
	CategoryCulturalSensitivity,
	CategoryEmotionalSafety,
	CategoryTechnicalIssues,
	CategoryPhysicalSafety,
}

// DisplayName converts the category identifier into its reviewer-facing form,
// e.g. "violence_harm" -> "Violence Harm".
func (c RubricCategory) DisplayName() string {
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Rubric maps each category to its review instructions (the markdown rubric
// text handed to the oracle verbatim). Read-only for the duration of a run.
type Rubric map[RubricCategory]string

// Instructions returns the rubric text for a category and whether it exists.
func (r Rubric) Instructions(c RubricCategory) (string, bool) {
	text, ok := r[c]
	return text, ok
}
