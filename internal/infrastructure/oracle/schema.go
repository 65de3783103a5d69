package oracle

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// The oracle's structured responses are an untrusted boundary. Each response
// is schema-validated before conversion into typed records; a structural
// violation downgrades the whole call to KindMalformedResponse. Severity is
// deliberately not required per flag: a record with an absent or unknown
// severity name is dropped individually by the evaluator, keeping the valid
// records around it.

const flagResponseSchemaJSON = `{
  "type": "object",
  "required": ["flags"],
  "properties": {
    "flags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["tag_numbers"],
        "properties": {
          "issue_type": {"type": "string"},
          "severity_level": {"type": "string"},
          "confidence": {"type": "number"},
          "tag_numbers": {
            "oneOf": [
              {"type": "integer"},
              {"type": "array", "items": {"type": "integer"}}
            ]
          },
          "rationale": {"type": "string"},
          "recommendation": {"type": "string"}
        }
      }
    }
  }
}`

const skillResponseSchemaJSON = `{
  "type": "object",
  "required": ["skill_tags"],
  "properties": {
    "skill_tags": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["skill_id", "tag_numbers"],
        "properties": {
          "skill_id": {"type": "string"},
          "skill_name": {"type": "string"},
          "confidence": {"type": "number"},
          "tag_numbers": {
            "oneOf": [
              {"type": "integer"},
              {"type": "array", "items": {"type": "integer"}}
            ]
          },
          "rationale": {"type": "string"}
        }
      }
    }
  }
}`

var (
	flagSchemaLoader  = gojsonschema.NewStringLoader(flagResponseSchemaJSON)
	skillSchemaLoader = gojsonschema.NewStringLoader(skillResponseSchemaJSON)
)

// TagNumbers tolerates the oracle returning either a single integer or an
// integer list for sentence references.
type TagNumbers []int

func (t *TagNumbers) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TagNumbers{single}
		return nil
	}
	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = TagNumbers(list)
	return nil
}

// Normalized returns the tag numbers sorted with duplicates removed.
func (t TagNumbers) Normalized() []int {
	seen := make(map[int]struct{}, len(t))
	out := make([]int, 0, len(t))
	for _, n := range t {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// RawFlag is one validated flag entry from a category evaluation response.
// Sentence IDs and severity names are still unchecked against the document
// and severity domain; the evaluator owns that validation.
type RawFlag struct {
	IssueType      string     `json:"issue_type"`
	SeverityLevel  string     `json:"severity_level"`
	Confidence     float64    `json:"confidence"`
	TagNumbers     TagNumbers `json:"tag_numbers"`
	Rationale      string     `json:"rationale"`
	Recommendation string     `json:"recommendation"`
}

// RawSkillTag is one validated skill entry from a skill tagging response.
type RawSkillTag struct {
	SkillID    string     `json:"skill_id"`
	SkillName  string     `json:"skill_name"`
	Confidence float64    `json:"confidence"`
	TagNumbers TagNumbers `json:"tag_numbers"`
	Rationale  string     `json:"rationale"`
}

// ParseFlagResponse validates and converts a category evaluation response.
func ParseFlagResponse(text string) ([]RawFlag, error) {
	cleanJSON := extractJSON(text)
	if err := validate(flagSchemaLoader, cleanJSON, "flags"); err != nil {
		return nil, err
	}
	var payload struct {
		Flags []RawFlag `json:"flags"`
	}
	if err := json.Unmarshal([]byte(cleanJSON), &payload); err != nil {
		return nil, malformedf("flags", "unmarshal: %w", err)
	}
	return payload.Flags, nil
}

// ParseSkillResponse validates and converts a skill tagging response.
func ParseSkillResponse(text string) ([]RawSkillTag, error) {
	cleanJSON := extractJSON(text)
	if err := validate(skillSchemaLoader, cleanJSON, "skill_tags"); err != nil {
		return nil, err
	}
	var payload struct {
		SkillTags []RawSkillTag `json:"skill_tags"`
	}
	if err := json.Unmarshal([]byte(cleanJSON), &payload); err != nil {
		return nil, malformedf("skill_tags", "unmarshal: %w", err)
	}
	return payload.SkillTags, nil
}

func validate(schema gojsonschema.JSONLoader, cleanJSON, op string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(cleanJSON))
	if err != nil {
		return malformedf(op, "response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return malformedf(op, "schema violation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// extractJSON strips markdown code fences some models wrap around JSON
// despite JSON-mode instructions.
func extractJSON(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
