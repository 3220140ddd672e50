package fields

import (
	"strings"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/nlp"
)

// minNameTokens is the shortest proper-noun run accepted as a name. Runs of 3 and 4
// tokens also qualify, but a run is reported as soon as it is long enough, so the
// earliest run always yields its first two tokens.
const minNameTokens = 2

// Name returns the first run of 2 to 4 consecutive proper nouns, or nil.
// The first run to complete in document order wins: at the earliest qualifying
// position that is the 2-token span, even when the run continues.
// Any capitalized multi-word phrase that precedes the real name will win.
func Name(tagger nlp.Tagger, text string) *string {
	if tagger == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	toks := tagger.Tag(text)
	for end := minNameTokens; end <= len(toks); end++ {
		run := toks[end-minNameTokens : end]
		if allProperNouns(run) {
			parts := make([]string, 0, len(run))
			for _, t := range run {
				parts = append(parts, t.Text)
			}
			name := strings.Join(parts, " ")
			return &name
		}
	}
	return nil
}

func allProperNouns(toks []nlp.Token) bool {
	for _, t := range toks {
		if t.Tag != nlp.TagProperNoun {
			return false
		}
	}
	return true
}
