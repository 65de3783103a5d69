package domain

import "fmt"

// SentenceUnit is the atomic addressable span of text within a document.
// IDs are contiguous integers starting at 1, assigned in reading order at
// segmentation time, and are the sole addressing mechanism for all
// downstream references.
type SentenceUnit struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Document is an immutable story prepared for review: its metadata plus the
// ordered sentence units produced by the segmenter.
type Document struct {
	ID         string         `json:"document_id"`
	Title      string         `json:"title"`
	GradeLevel int            `json:"grade_level"`
	Units      []SentenceUnit `json:"units"`
}

// ValidID reports whether id addresses a sentence unit of this document.
func (d Document) ValidID(id int) bool {
	return id >= 1 && id <= len(d.Units)
}

// UnitText returns the text of the sentence unit with the given ID, or the
// empty string if the ID is out of range.
func (d Document) UnitText(id int) string {
	if !d.ValidID(id) {
		return ""
	}
	return d.Units[id-1].Text
}

// GradeName maps a numeric grade level (0-8) to its display name.
func GradeName(level int) string {
	if level == 0 {
		return "Kindergarten"
	}
	return fmt.Sprintf("Grade %d", level)
}
