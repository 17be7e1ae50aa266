package grades

import "strings"

// GradeRecord is one accepted row of a grade sheet.
//
// Optional scores are nil when the source did not supply them; they are
// never zero-filled.
type GradeRecord struct {
	Sequence        int         `json:"sequence"`
	StudentID       string      `json:"student_id"`
	FirstMiddleName string      `json:"first_middle_name"`
	LastName        string      `json:"last_name"`
	Midterm         *Score      `json:"midterm,omitempty"`
	Periodic        *Score      `json:"periodic,omitempty"`
	Practical       *Score      `json:"practical,omitempty"`
	Final           *Score      `json:"final,omitempty"`
	Average         *Score      `json:"average,omitempty"`
	Letter          LetterGrade `json:"letter,omitempty"`
	Classification  string      `json:"classification,omitempty"`
	Note            string      `json:"note,omitempty"`

	// Page and Shape describe where the row came from.
	Page  int   `json:"page"`
	Shape Shape `json:"-"`
}

// FullName joins the name parts back together.
func (r GradeRecord) FullName() string {
	if r.FirstMiddleName == "" {
		return r.LastName
	}
	return r.FirstMiddleName + " " + r.LastName
}

// SplitName splits a full name on whitespace. The last token is the last
// name and everything before it is the first/middle name.
func SplitName(full string) (firstMiddle, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
