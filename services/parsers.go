package services

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParsePrice parses a European-formatted price cell such as "€ 1.200,99".
// Dots are thousands separators and the comma is the decimal separator.
// Empty cells and the "NA"/"null" placeholders yield ok == false.
func ParsePrice(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "na") || strings.EqualFold(trimmed, "null") {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) || r == '.' {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, trimmed)

	return parseFinite(cleaned)
}

var truthy = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "ja": true}

// ParseBoolean maps yes/no style cells (English and German) to a bool.
// 0/false/no/n/nein and anything unrecognised, including the empty string,
// are false. A missing cell is handled by the caller, which leaves the field
// absent.
func ParseBoolean(raw string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(raw))]
}

// NormalizeURL makes sure a website carries a scheme, defaulting to https.
func NormalizeURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s, true
	}
	return "https://" + s, true
}

// ParseNumber is the generic numeric parser used for coordinates. Only the
// first comma is read as a decimal separator.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	return parseFinite(strings.Replace(s, ",", ".", 1))
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
