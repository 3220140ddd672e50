// Package nlp provides part-of-speech tagging for heuristic field extraction.
package nlp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Universal tags used by callers.
const (
	TagProperNoun = "PROPN"
	TagSpace      = "SPACE"
	TagOther      = "X"
)

// Token is one tagged token.
type Token struct {
	Text string
	Tag  string
}

// Tagger splits text into tokens and tags each with a part of speech.
type Tagger interface {
	Tag(text string) []Token
}

// ProseTagger tags with prose's averaged perceptron model. Each line is tagged
// on its own and line breaks are emitted as SPACE tokens, so no token run spans lines.
type ProseTagger struct {
	logger *slog.Logger
}

func NewProseTagger(logger *slog.Logger) *ProseTagger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProseTagger{logger: logger}
}

func (t *ProseTagger) Tag(text string) []Token {
	lines := strings.Split(text, "\n")
	out := make([]Token, 0, len(text)/4)
	for i, line := range lines {
		if i > 0 {
			out = append(out, Token{Text: "\n", Tag: TagSpace})
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		toks, err := t.tagLine(line)
		if err != nil {
			t.logger.Warn("nlp.tag.failed", "line", i+1, "error", err)
			out = append(out, Token{Text: line, Tag: TagOther})
			continue
		}
		out = append(out, toks...)
	}
	return out
}

func (t *ProseTagger) tagLine(line string) (toks []Token, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			toks, err = nil, fmt.Errorf("prose panic: %v", rec)
		}
	}()
	doc, err := prose.NewDocument(line,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}
	for _, tok := range doc.Tokens() {
		toks = append(toks, Token{Text: tok.Text, Tag: Universal(tok.Tag)})
	}
	return toks, nil
}

// Universal maps Penn Treebank tags onto the small universal set callers inspect.
func Universal(penn string) string {
	switch penn {
	case "NNP", "NNPS":
		return TagProperNoun
	case "NN", "NNS":
		return "NOUN"
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ", "MD":
		return "VERB"
	case "JJ", "JJR", "JJS":
		return "ADJ"
	case "RB", "RBR", "RBS", "WRB":
		return "ADV"
	case "PRP", "PRP$", "WP", "WP$":
		return "PRON"
	case "DT", "PDT", "WDT":
		return "DET"
	case "IN":
		return "ADP"
	case "CD":
		return "NUM"
	case "CC":
		return "CCONJ"
	case ",", ".", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "#", "$":
		return "PUNCT"
	default:
		return TagOther
	}
}
