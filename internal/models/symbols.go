package models

import (
	"regexp"
	"strings"
	"unicode"
)

// taseSymbolIDs maps Hebrew TASE security names to numeric TASE IDs. Yahoo
// Finance lists TASE securities as "<numeric id>.TA". Seeded from observed
// statement data; registered names include common short and full spellings.
var taseSymbolIDs = map[string]string{
	"סקופ":           "288019",  // Scope Metals
	"פמס":            "315010",  // FMS Enterprises
	"מטרקס":          "445015",  // Matrix
	"מטריקס":         "445015",  // Matrix (alternate spelling)
	"מחשר":           "507012",  // Ituran
	"מיחשוב ישר קב":  "507012",  // Ituran (full name)
	"מזטפ":           "695437",  // Mizrahi Tefahot
	"מזרחי טפחות":    "695437",  // Mizrahi Tefahot (full name)
	"קלטו":           "1083955", // Qualitau
	"קווליטאו":       "1083955", // Qualitau (alternate)
	"אטרא":           "1096106", // Atreyu Capital Markets
	"אטראו שוקי הון": "1096106", // Atreyu (full name)
	"נקסנ":           "1176593", // Next Vision
	"נקסט ויז'ן":     "1176593", // Next Vision (full name)
}

var taseNumericID = regexp.MustCompile(`^\d{5,8}$`)

// IsTASENumericID reports whether the symbol looks like a numeric TASE
// security ID (5-8 digits).
func IsTASENumericID(symbol string) bool {
	return taseNumericID.MatchString(strings.TrimSpace(symbol))
}

// IsHebrewName reports whether the symbol contains Hebrew characters.
func IsHebrewName(symbol string) bool {
	for _, r := range symbol {
		if unicode.Is(unicode.Hebrew, r) {
			return true
		}
	}
	return false
}

// YahooSymbol translates a broker symbol into Yahoo Finance format for the
// given currency. NIS symbols become "<numeric id>.TA"; other currencies pass
// through unchanged. The second return value is false when a Hebrew name has
// no known ID mapping; the returned ".TA"-suffixed guess may still resolve.
func YahooSymbol(symbol, currency string) (string, bool) {
	symbol = strings.TrimSpace(symbol)
	if currency != CurrencyNIS {
		return symbol, true
	}

	if strings.HasSuffix(symbol, ".TA") {
		return symbol, true
	}
	if IsTASENumericID(symbol) {
		return symbol + ".TA", true
	}
	if IsHebrewName(symbol) {
		if id, ok := taseSymbolIDs[symbol]; ok {
			return id + ".TA", true
		}
		return symbol + ".TA", false
	}
	// Latin symbol with NIS currency (dual-listed): best-effort .TA suffix.
	return symbol + ".TA", true
}
