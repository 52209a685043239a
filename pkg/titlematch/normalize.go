// Package titlematch scores how closely a library title matches a catalog title.
// It is advisory only: identity is always decided by external ids.
package titlematch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Roman numerals II-IX after a space. Leading numerals ("VII Days") and the
// ambiguous single letters I and X are left alone.
var romanNumeral = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanValues = map[string]string{
	"ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9",
}

// yearSuffix matches a trailing release year such as "(1999)".
var yearSuffix = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)

var leadingArticles = []string{"the ", "a ", "an "}

// Clean lowercases a title and strips accents, articles, punctuation and a
// trailing "(year)" so "Léon: The Professional (1994)" and "Leon the Professional"
// compare equal.
func Clean(title string) string {
	s := yearSuffix.ReplaceAllString(title, "")
	s = strings.ToLower(s)
	s = romanNumeral.ReplaceAllStringFunc(s, func(m string) string {
		if n, ok := romanValues[strings.TrimSpace(m)]; ok {
			return " " + n
		}
		return m
	})
	s = stripAccents(s)

	s = strings.NewReplacer("&", " and ", "-", " ", "'", "", "’", "", ".", " ").Replace(s)

	parts := strings.Split(s, ":")
	for i, p := range parts {
		parts[i] = stripArticle(strings.TrimSpace(p))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func stripArticle(s string) string {
	for _, a := range leadingArticles {
		if strings.HasPrefix(s, a) {
			return strings.TrimPrefix(s, a)
		}
	}
	return s
}
