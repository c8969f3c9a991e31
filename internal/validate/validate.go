// Package validate normalizes untrusted request input. Each function trims
// its input and reports whether the result is acceptable.
package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxEmail   = 80
	maxQuery   = 50
	minQty     = 1
	maxQty     = 50
	maxCoord   = 100_000 // px; anything larger is not a real pointer
	minPass    = 8
	maxPass    = 20
	maxTelName = 80
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// search terms: letters in any script, digits, and the punctuation
	// found in brand names (Lay's, M&M's, Cheez-It)
	reQuery = regexp.MustCompile(`^[\p{L}0-9 _'&\\-]+$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reName  = regexp.MustCompile(`^[\p{L}0-9 .'&!-]+$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxEmail {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query. Long queries are cut to maxQuery runes
// rather than rejected.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > maxQuery {
		s = string([]rune(s)[:maxQuery])
	}
	return s, reQuery.MatchString(s)
}

func ClampQty(n int) int {
	return min(max(n, minQty), maxQty)
}

// ID validates product, category, pack and cart line identifiers.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reID.MatchString(s)
}

// OptionalID accepts an empty identifier.
func OptionalID(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	return ID(s)
}

// ProductName validates the "Brand Name" string carried by telemetry.
func ProductName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxTelName {
		return "", false
	}
	return s, reName.MatchString(s)
}

// Coord accepts a pointer coordinate in CSS pixels. clientY is negative
// once the pointer has left through the top edge, so negatives are valid.
func Coord(f float64) bool {
	return !math.IsNaN(f) && math.Abs(f) <= maxCoord
}

// Password checks shape only: 8 to 20 bytes mixing lower, upper, digit
// and symbol. Hash comparison happens in the auth service.
func Password(s string) bool {
	if len(s) < minPass || len(s) > maxPass {
		return false
	}
	var classes [4]bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			classes[0] = true
		case 'A' <= r && r <= 'Z':
			classes[1] = true
		case '0' <= r && r <= '9':
			classes[2] = true
		default:
			classes[3] = true
		}
	}
	return classes == [4]bool{true, true, true, true}
}
