package utils

import "time"

// -----------------------------------------------------------------------------

// Horizon constants for the spread computation.
const (
	DefaultCacheTTL          = 30 * time.Second
	DefaultIntradayTolerance = time.Minute
	DefaultFiveDayTolerance  = 5 * time.Minute
	FiveDayWindow            = 5

	IntradayTimeLayout = "15:04"
	FiveDayTimeLayout  = "01-02 15:04"
)

// -----------------------------------------------------------------------------

// MarketIndex is one of the fixed reference indices shown with every snapshot.
type MarketIndex struct {
	Code string
	Name string
}

// ReferenceIndices are returned in this order as index1..index8.
var ReferenceIndices = [8]MarketIndex{
	{Code: "sh000001", Name: "上证指数"},
	{Code: "sz399001", Name: "深证成指"},
	{Code: "sz399006", Name: "创业板指"},
	{Code: "sh000688", Name: "科创50"},
	{Code: "sh000016", Name: "上证50"},
	{Code: "sh000300", Name: "沪深300"},
	{Code: "sh000905", Name: "中证500"},
	{Code: "sh000852", Name: "中证1000"},
}

// ReferenceIndexCodes returns the index codes in display order.
func ReferenceIndexCodes() []string {
	codes := make([]string, 0, len(ReferenceIndices))
	for _, idx := range ReferenceIndices {
		codes = append(codes, idx.Code)
	}
	return codes
}
