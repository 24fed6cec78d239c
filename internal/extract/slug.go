package extract

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugify derives the stable keyword ID for a canonical keyword string.
// ASCII-only keywords become a lowercase [a-z0-9_] slug; keywords carrying
// Hangul, or whose slug ends up with fewer than 2 alphanumerics, fall back
// to a hash ID of the form kw_<base36>. The result is deterministic across
// runs so the same keyword keeps the same ID between snapshots.
func Slugify(keyword string) string {
	trimmed := strings.TrimSpace(keyword)
	if !containsHangul(trimmed) {
		if slug, ok := asciiSlug(trimmed); ok {
			return slug
		}
	}
	return "kw_" + strconv.FormatUint(uint64(rollingHash(trimmed)), 36)
}

func asciiSlug(s string) (string, bool) {
	var b strings.Builder
	alnum := 0
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			alnum++
			lastUnderscore = false
		case r == '_' || r == ' ' || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			// Other runes are dropped from the slug.
		}
	}
	slug := strings.Trim(b.String(), "_")
	if alnum < 2 {
		return "", false
	}
	return slug, true
}

// rollingHash is the 32-bit string hash h = (h<<5 - h + codepoint) mod 2^32.
func rollingHash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h<<5 - h + uint32(r)
	}
	return h
}

func containsHangul(s string) bool {
	for _, r := range s {
		if (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x1100 && r <= 0x11FF) || (r >= 0x3130 && r <= 0x318F) {
			return true
		}
	}
	return false
}
