package fields

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// skillVocabulary is the controlled list of skills recognized in resumes.
var skillVocabulary = []string{
	"Python", "Java", "C++", "Machine Learning", "Data Analysis", "Project Management",
	"JavaScript", "HTML", "CSS", "SQL", "R", "Statistical Analysis",
	"Artificial Intelligence", "Deep Learning", "Natural Language Processing",
	"Computer Vision", "Problem Solving", "Communication Skills", "Teamwork",
	"Time Management",
	"TypeScript", "Docker", "Kubernetes", "Git", "Linux", "Leadership", "Critical Thinking",
}

// educationKeywords mark a line as education-related (case-insensitive substring).
var educationKeywords = []string{
	"Bachelor's Degree", "Master's Degree", "Doctorate", "PhD", "Diploma",
	"Certification", "Year", "Grade", "Percentage", "College", "University",
	"HSC", "SSC",
	"Bachelor", "Master", "B.Tech", "M.Tech", "MBA", "School",
}

// skillMatcher pairs a compiled pattern with the canonical lowercased term.
type skillMatcher struct {
	term string
	re   *regexp.Regexp
}

var (
	skillMatchers        = compileSkills(skillVocabulary)
	educationKeywordsLow = lowerAll(educationKeywords)
)

// SkillVocabulary returns a copy of the skills vocabulary.
func SkillVocabulary() []string { return slices.Clone(skillVocabulary) }

// EducationKeywords returns a copy of the education keyword list.
func EducationKeywords() []string { return slices.Clone(educationKeywords) }

func compileSkills(terms []string) []skillMatcher {
	out := make([]skillMatcher, 0, len(terms))
	for _, t := range terms {
		out = append(out, skillMatcher{term: strings.ToLower(t), re: regexp.MustCompile(termPattern(t))})
	}
	return out
}

// termPattern builds a case-insensitive pattern for t with word boundaries that
// still hold when t starts or ends with a symbol, as in "C++".
func termPattern(t string) string {
	words := strings.Fields(t)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	body := strings.Join(words, `\s+`)

	first, _ := utf8.DecodeRuneInString(t)
	last, _ := utf8.DecodeLastRuneInString(t)
	pre, post := `\b`, `\b`
	if !isWordRune(first) {
		pre = `(?:^|[^\w])`
	}
	if !isWordRune(last) {
		post = `(?:$|[^\w])`
	}
	return `(?i)` + pre + body + post
}

func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
