package fields

import (
	"regexp"
	"sort"
	"strings"
)

// space is the body of a whitespace character class that also covers non-breaking
// and other Unicode spaces, which PDF text layers emit.
const space = `\s\x{85}\p{Z}\x{1c}-\x{1f}`

var (
	rePhone = regexp.MustCompile(`\b(?:\+?\d{1,3}[-.` + space + `]?)?\(?\d{3}\)?[-.` + space + `]?\d{3}[-.` + space + `]?\d{4}\b`)
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// ContactNumber returns the first phone-number-shaped token, or nil.
func ContactNumber(text string) *string {
	return firstMatch(rePhone, text)
}

// Email returns the first email-shaped token, or nil.
func Email(text string) *string {
	return firstMatch(reEmail, text)
}

// Skills returns the vocabulary terms found in text, lowercased, deduplicated and sorted.
func Skills(text string) []string {
	out := []string{}
	for _, m := range skillMatchers {
		if m.re.MatchString(text) {
			out = append(out, m.term)
		}
	}
	sort.Strings(out)
	return out
}

// Education returns every trimmed line containing an education keyword, in order.
// Duplicate lines are kept.
func Education(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		low := strings.ToLower(line)
		for _, kw := range educationKeywordsLow {
			if strings.Contains(low, kw) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
	}
	return out
}

// WorkExperience is a placeholder extractor and always returns an empty list.
func WorkExperience(string) []Experience {
	return []Experience{}
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	return &m
}
