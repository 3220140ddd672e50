package fields

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	reCity    = regexp.MustCompile(`[` + space + `,]([A-Z][a-zA-Z` + space + `]+),`)
	rePincode = regexp.MustCompile(`\b\d{6}\b`)
)

// spanMarkers end a free-text address span when they follow its trailing whitespace.
var spanMarkers = []string{"city", "pincode"}

// Address extracts city, pincode and a free-text span independently. The
// composite Address string is set only when all three were found.
func Address(text string) AddressRecord {
	var rec AddressRecord
	if m := reCity.FindStringSubmatch(text); m != nil {
		city := m[1]
		rec.City = &city
	}
	rec.Pincode = firstMatch(rePincode, text)

	span := strings.TrimSpace(addressSpan(text))
	if rec.City != nil && rec.Pincode != nil && span != "" {
		composite := fmt.Sprintf("%s, %s, %s", *rec.City, *rec.Pincode, span)
		rec.Address = &composite
	}
	return rec
}

// addressSpan finds the leftmost run of [digit letter whitespace , -] that does not
// start right after a digit, ends in whitespace, and is followed by "city",
// "pincode" or the end of text (optionally one trailing newline). Among spans
// with the leftmost start, the longest wins. Digits and whitespace are Unicode
// classes; letters are ASCII only.
func addressSpan(text string) string {
	rs := []rune(text)
	n := len(rs)
	i := 0
	for i < n {
		if !isSpanRune(rs[i]) {
			i++
			continue
		}
		runStart := i
		for i < n && isSpanRune(rs[i]) {
			i++
		}
		runEnd := i

		// the largest valid end inside this run; it does not depend on the start
		best := -1
		for k := runEnd; k > runStart+1; k-- {
			if isSpaceRune(rs[k-1]) && followedByMarker(rs, k) {
				best = k
				break
			}
		}
		if best < 0 {
			continue
		}
		for s := runStart; s+2 <= best; s++ {
			if s > 0 && unicode.IsDigit(rs[s-1]) {
				continue
			}
			return string(rs[s:best])
		}
	}
	return ""
}

func followedByMarker(rs []rune, k int) bool {
	if k == len(rs) || (k == len(rs)-1 && rs[k] == '\n') {
		return true
	}
	for _, m := range spanMarkers {
		if hasRunePrefix(rs[k:], m) {
			return true
		}
	}
	return false
}

func hasRunePrefix(rs []rune, prefix string) bool {
	i := 0
	for _, r := range prefix {
		if i >= len(rs) || rs[i] != r {
			return false
		}
		i++
	}
	return true
}

func isSpanRune(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
		isSpaceRune(r) || r == ',' || r == '-'
}

// isSpaceRune matches the whitespace class used by the field patterns: Unicode
// White_Space plus the ASCII information separators.
func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
