package grades

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText composes decomposed Vietnamese diacritics, which PDF text
// layers frequently emit, and trims the result.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// foldKey reduces s to lower-case ASCII-ish words for keyword matching:
// diacritics are stripped, case is folded and punctuation becomes a space.
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	folded = strings.NewReplacer("đ", "d", "Đ", "d").Replace(folded)

	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// keywordSet matches folded keywords against whole words of a text.
type keywordSet [][]string

func newKeywordSet(keywords ...string) keywordSet {
	ks := make(keywordSet, 0, len(keywords))
	for _, k := range keywords {
		if words := strings.Fields(foldKey(k)); len(words) > 0 {
			ks = append(ks, words)
		}
	}
	return ks
}

// match reports whether any keyword appears in s as a run of whole words.
func (ks keywordSet) match(s string) bool {
	words := strings.Fields(foldKey(s))
	for _, kw := range ks {
		if containsWords(words, kw) {
			return true
		}
	}
	return false
}

func containsWords(words, seq []string) bool {
	for i := 0; i+len(seq) <= len(words); i++ {
		found := true
		for j := range seq {
			if words[i+j] != seq[j] {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}

// equal reports whether the folded text is exactly one of the keywords.
func (ks keywordSet) equal(s string) bool {
	words := strings.Fields(foldKey(s))
	for _, kw := range ks {
		if len(kw) == len(words) && containsWords(words, kw) {
			return true
		}
	}
	return false
}
