package engine

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// --- PREFIX PARSERS ---
// Both parsers read the longest numeric prefix and ignore whatever follows,
// so "2021abc" is 2021 and "85000 USD" is 85000.

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// prefixInt parses "  -2021xyz" -> -2021. ok is false when no digit follows
// the optional sign or the value does not fit in an int.
func prefixInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, isSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, false
	}

	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// floatPrefixLen returns the length of the longest decimal literal at the
// start of s: [sign] digits [. digits] [e [sign] digits].
func floatPrefixLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		intDigits++
	}

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			fracDigits++
		}
		if intDigits > 0 || fracDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0
	}

	// Exponent only counts when it carries at least one digit.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	return i
}

// prefixFloat parses "123.45abc" -> 123.45 and accepts a signed "Infinity".
func prefixFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, isSpace)

	rest, sign := s, 1.0
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -1
		}
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		return math.Inf(int(sign)), true
	}

	n := floatPrefixLen(s)
	if n == 0 {
		return 0, false
	}

	// ParseFloat reports ErrRange with a usable ±Inf/0 result, as parseFloat does.
	f, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}
