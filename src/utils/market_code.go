package utils

import "strings"

// -----------------------------------------------------------------------------

// Exchange prefixes used by the quote feeds.
const (
	MarketShanghai = "sh"
	MarketShenzhen = "sz"
)

// -----------------------------------------------------------------------------

// IsQualified reports whether code already carries a market prefix (any case).
func IsQualified(code string) bool {
	if len(code) < 2 {
		return false
	}
	prefix := strings.ToLower(code[:2])
	return prefix == MarketShanghai || prefix == MarketShenzhen
}

// -----------------------------------------------------------------------------

// MarketPrefix returns the market of a bare code. Codes starting with 0, 2 or 3
// (which includes the 399 index family) trade in Shenzhen, everything else in
// Shanghai.
func MarketPrefix(code string) string {
	if strings.HasPrefix(code, "0") || strings.HasPrefix(code, "2") || strings.HasPrefix(code, "3") {
		return MarketShenzhen
	}
	return MarketShanghai
}

// -----------------------------------------------------------------------------

// Qualify maps a code to its exchange-qualified, lower-case-prefixed form.
// Qualified codes only get their prefix lower-cased. Empty stays empty.
func Qualify(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if IsQualified(code) {
		return strings.ToLower(code[:2]) + code[2:]
	}
	return MarketPrefix(code) + code
}

// -----------------------------------------------------------------------------

// Bare strips the market prefix of a qualified code.
func Bare(code string) string {
	code = strings.TrimSpace(code)
	if IsQualified(code) {
		return code[2:]
	}
	return code
}
