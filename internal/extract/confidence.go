package extract

import (
	"regexp"
	"strings"
)

var (
	reConfEmail   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reConfPhone   = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)
	reConfSection = regexp.MustCompile(`(?im)^\s*(education|experience|skills|projects|summary|objective)\b`)
)

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	// boost for common resume artifacts
	score := float32(0.2) // base
	if reConfEmail.MatchString(txt) {
		score += 0.2
	}
	if reConfPhone.MatchString(txt) {
		score += 0.15
	}
	if reConfSection.MatchString(txt) {
		score += 0.25
	}
	if len(txt) > 400 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
