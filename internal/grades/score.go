package grades

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidScore is returned when a token is not a decimal score.
var ErrInvalidScore = errors.New("invalid score")

// scoreToken accepts one or two integer digits and up to two fractional
// digits. Both '.' and ',' are accepted as the decimal separator.
var scoreToken = regexp.MustCompile(`^(\d{1,2})(?:[.,](\d{1,2}))?$`)

// Score is a grade value held in hundredths, so 8.50 and 8.5 compare equal
// and render the same way.
type Score int64

// ParseScore parses a decimal score such as "8", "8.5" or "8,50".
func ParseScore(s string) (Score, error) {
	m := scoreToken.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, s)
	}

	whole, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, s)
	}

	frac := 0
	switch len(m[2]) {
	case 1:
		frac = int(m[2][0]-'0') * 10
	case 2:
		frac = int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	}

	return Score(whole*100 + frac), nil
}

// parseOptionalScore returns nil for an empty or non-decimal cell.
func parseOptionalScore(s string) *Score {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := ParseScore(s)
	if err != nil {
		return nil
	}
	return &v
}

// Float64 returns the score as a float.
func (s Score) Float64() float64 {
	return float64(s) / 100
}

// String renders the score with exactly two fractional digits.
func (s Score) String() string {
	return fmt.Sprintf("%d.%02d", int64(s)/100, int64(s)%100)
}

// MarshalJSON encodes the score as a JSON number with two fractional digits.
func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}
