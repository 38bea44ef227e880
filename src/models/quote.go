package models

import "time"

// MQuote is one record of the batched realtime feed.
// ChangePercent is fractional (0.025 == 2.5%).
type MQuote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
	Valid         bool    `json:"valid"`
}

// MTimePoint is one minute sample. ChangePercent is relative to the
// reference close of the series it belongs to, not to the prior sample.
type MTimePoint struct {
	Timestamp     time.Time `json:"datetime"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"changePercent"`
}

// MTrackedPair identifies the two codes being monitored.
type MTrackedPair struct {
	CodeA string `json:"stock1"`
	CodeB string `json:"stock2"`
}

// IsConfigured reports whether both codes are set.
func (p MTrackedPair) IsConfigured() bool {
	return p.CodeA != "" && p.CodeB != ""
}

// Codes returns the non-empty codes of the pair.
func (p MTrackedPair) Codes() []string {
	codes := make([]string, 0, 2)
	for _, c := range []string{p.CodeA, p.CodeB} {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}
