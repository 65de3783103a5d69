package domain

import (
	"encoding/json"
	"fmt"
)

// Severity is the total-ordered severity domain for rubric flags.
// Precedence is Critical > High > Medium > Low; the numeric values encode
// that order so overlapping judgments are resolved by integer comparison
// rather than string comparison.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Outranks reports whether s has strictly higher precedence than other.
func (s Severity) Outranks(other Severity) bool {
	return s > other
}

// ParseSeverity converts an oracle-supplied severity name into a Severity.
// Unknown or empty names return an error; callers drop the offending record
// rather than guessing in either direction.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity level %q", name)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal severity %d", int(s))
	}
	return json.Marshal(name)
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
