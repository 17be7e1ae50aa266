package grades

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSequence is returned when the sequence number is not a
	// positive integer.
	ErrInvalidSequence = errors.New("invalid sequence number")
	// ErrMissingStudentID is returned when a row has no student ID.
	ErrMissingStudentID = errors.New("missing student ID")
	// ErrNotMatched is returned when parsing a Match that was not recognized.
	ErrNotMatched = errors.New("row was not matched")
)

// classifications are the ranking words that may open the free text after
// the scores. Longer phrases come first.
var classifications = []string{
	"Trung bình khá",
	"Trung bình",
	"Xuất sắc",
	"Giỏi",
	"Khá",
	"Yếu",
	"Kém",
}

var classificationKeys = func() []keywordSet {
	sets := make([]keywordSet, len(classifications))
	for i, c := range classifications {
		sets[i] = newKeywordSet(c)
	}
	return sets
}()

// Parser converts classifier matches into GradeRecords.
type Parser struct {
	letters LetterSet
}

// NewParser creates a parser that validates letter grades against letters.
func NewParser(letters LetterSet) *Parser {
	if len(letters) == 0 {
		letters = LettersABCDF
	}
	return &Parser{letters: letters}
}

// Parse builds a record from m. Text-line matches reject malformed scores
// because the shape already constrained them; table matches treat a
// malformed score cell as absent. An invalid letter grade rejects the row
// in both paths.
func (p *Parser) Parse(m Match) (GradeRecord, error) {
	if !m.Matched() {
		return GradeRecord{}, ErrNotMatched
	}

	seq, err := parseSequence(m.Sequence)
	if err != nil {
		return GradeRecord{}, err
	}

	id := strings.TrimSpace(m.StudentID)
	if id == "" {
		return GradeRecord{}, ErrMissingStudentID
	}

	rec := GradeRecord{
		Sequence:  seq,
		StudentID: id,
		Shape:     m.Shape,
	}

	name := m.Name
	if m.LastName != "" {
		name = strings.TrimSpace(name + " " + m.LastName)
	}
	rec.FirstMiddleName, rec.LastName = SplitName(name)

	if m.Shape == ShapeTable {
		rec.Midterm = parseOptionalScore(m.Midterm)
		rec.Periodic = parseOptionalScore(m.Periodic)
		rec.Practical = parseOptionalScore(m.Practical)
		rec.Final = parseOptionalScore(m.Final)
		rec.Average = parseOptionalScore(m.Average)
		rec.Classification = m.Classification
		rec.Note = m.Note
	} else {
		scores := []struct {
			raw string
			dst **Score
		}{
			{m.Midterm, &rec.Midterm},
			{m.Periodic, &rec.Periodic},
			{m.Practical, &rec.Practical},
			{m.Final, &rec.Final},
			{m.Average, &rec.Average},
		}
		for _, s := range scores {
			if s.raw == "" {
				continue
			}
			v, err := ParseScore(s.raw)
			if err != nil {
				return GradeRecord{}, err
			}
			*s.dst = &v
		}
		rec.Classification, rec.Note = splitTail(m.Tail)
	}

	if m.Letter != "" {
		letter, err := p.letters.Parse(m.Letter)
		if err != nil {
			return GradeRecord{}, err
		}
		rec.Letter = letter
	}

	return rec, nil
}

func parseSequence(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSequence, s)
	}
	return n, nil
}

// splitTail separates a leading classification word from the note.
func splitTail(tail string) (classification, note string) {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return "", ""
	}

	words := strings.Fields(tail)
	for _, ks := range classificationKeys {
		n := len(ks[0])
		if len(words) < n {
			continue
		}
		if ks.equal(strings.Join(words[:n], " ")) {
			return strings.Join(words[:n], " "), strings.Join(words[n:], " ")
		}
	}
	return "", tail
}
