package grades

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLetter is returned when a letter grade is outside the configured set.
var ErrInvalidLetter = errors.New("invalid letter grade")

// LetterGrade is the categorical grade summary printed next to the scores.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
)

// LetterSet is the closed enumeration of letter grades a document may use.
type LetterSet []LetterGrade

var (
	// LettersABCD is used by sheets that never print a failing letter.
	LettersABCD = LetterSet{GradeA, GradeB, GradeC, GradeD}
	// LettersABCDF is the default enumeration.
	LettersABCDF = LetterSet{GradeA, GradeB, GradeC, GradeD, GradeF}
)

// ParseLetterSet parses a configuration value such as "ABCD" or "ABCDF".
func ParseLetterSet(s string) (LetterSet, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ABCD":
		return LettersABCD, nil
	case "ABCDF", "":
		return LettersABCDF, nil
	default:
		return nil, fmt.Errorf("unsupported letter set %q (must be ABCD or ABCDF)", s)
	}
}

// Parse validates tok against the set.
func (ls LetterSet) Parse(tok string) (LetterGrade, error) {
	g := LetterGrade(strings.ToUpper(strings.TrimSpace(tok)))
	for _, allowed := range ls {
		if g == allowed {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLetter, tok)
}

// Contains reports whether g belongs to the set.
func (ls LetterSet) Contains(g LetterGrade) bool {
	for _, allowed := range ls {
		if g == allowed {
			return true
		}
	}
	return false
}

// String returns the set in its configuration form, e.g. "ABCDF".
func (ls LetterSet) String() string {
	var b strings.Builder
	for _, g := range ls {
		b.WriteString(string(g))
	}
	return b.String()
}
