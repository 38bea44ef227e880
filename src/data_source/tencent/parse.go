package tencent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"spread-observer/src/analysis/core"
	"spread-observer/src/helpers"
	"spread-observer/src/models"
	"spread-observer/src/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// -----------------------------------------------------------------------------
// Realtime feed: v_sh600000="1~name~600000~price~...~pct~...";
// -----------------------------------------------------------------------------

const (
	realtimeMinFields  = 33
	realtimeNameField  = 1
	realtimePriceField = 3
	realtimePctField   = 32
)

var hundred = decimal.NewFromInt(100)

// decodeGBK converts the realtime feed body to UTF-8.
func decodeGBK(body []byte) (string, error) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil {
		return "", helpers.NewDataSourceError("gbk decode failed", err)
	}
	return string(out), nil
}

// -----------------------------------------------------------------------------

// parseRealtime extracts one quote per well-formed record. Short or
// unparseable records are skipped and counted.
func parseRealtime(body string) (map[string]models.MQuote, int) {
	quotes := make(map[string]models.MQuote)
	skipped := 0

	for _, line := range strings.Split(body, ";") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "~")
		if len(parts) < realtimeMinFields {
			skipped++
			continue
		}

		code := recordCode(parts[0])
		if code == "" {
			skipped++
			continue
		}

		price, err := parseNumber(parts[realtimePriceField])
		if err != nil {
			skipped++
			continue
		}
		pct, err := parseNumber(parts[realtimePctField])
		if err != nil {
			skipped++
			continue
		}

		quotes[code] = models.MQuote{
			Code:          code,
			Name:          parts[realtimeNameField],
			Price:         price.InexactFloat64(),
			ChangePercent: pct.Div(hundred).InexactFloat64(),
			Valid:         true,
		}
	}

	return quotes, skipped
}

// recordCode pulls "sh600000" out of `v_sh600000="1`.
func recordCode(head string) string {
	key := strings.SplitN(head, "=", 2)[0]
	if i := strings.LastIndex(key, "_"); i >= 0 {
		key = key[i+1:]
	}
	return utils.Qualify(key)
}

// parseNumber treats an empty field as zero, matching the feed's habit of
// leaving suspended securities blank.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// numberOf accepts the string-or-number fields of the JSON feeds.
func numberOf(v interface{}) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		return parseNumber(val)
	case float64:
		return decimal.NewFromFloat(val), nil
	case json.Number:
		return parseNumber(val.String())
	default:
		return decimal.Zero, fmt.Errorf("unexpected numeric type %T", v)
	}
}

// -----------------------------------------------------------------------------
// Minute samples: "0930 10.50 1234 1234567.00"
// -----------------------------------------------------------------------------

func parseSample(entry string, day time.Time, minFields int) (time.Time, float64, error) {
	fields := strings.Fields(entry)
	if len(fields) < minFields {
		return time.Time{}, 0, fmt.Errorf("short sample %q", entry)
	}

	hm, err := time.ParseInLocation("1504", fields[0], day.Location())
	if err != nil {
		return time.Time{}, 0, err
	}
	price, err := parseNumber(fields[1])
	if err != nil {
		return time.Time{}, 0, err
	}

	ts := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, day.Location())
	return ts, price.InexactFloat64(), nil
}

// buildSeries converts samples into time points relative to refClose.
func buildSeries(entries []string, day time.Time, refClose float64, minFields int) ([]models.MTimePoint, int) {
	points := make([]models.MTimePoint, 0, len(entries))
	skipped := 0

	for _, entry := range entries {
		ts, price, err := parseSample(entry, day, minFields)
		if err != nil {
			skipped++
			continue
		}
		points = append(points, models.MTimePoint{
			Timestamp:     ts,
			Price:         price,
			ChangePercent: core.CalculateChangePercent(price, refClose),
		})
	}
	return points, skipped
}

// -----------------------------------------------------------------------------
// Intraday feed (JSON)
// -----------------------------------------------------------------------------

type minuteResponse struct {
	Code int                        `json:"code"`
	Msg  string                     `json:"msg"`
	Data map[string]json.RawMessage `json:"data"`
}

type minuteStock struct {
	Data struct {
		Data []string `json:"data"`
		Date string   `json:"date"`
	} `json:"data"`
	Qt map[string]json.RawMessage `json:"qt"`
}

// parseIntraday decodes the minute query for code. today is used when the
// payload carries no trading date.
func parseIntraday(body []byte, code string, today time.Time) ([]models.MTimePoint, int, error) {
	var resp minuteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, helpers.NewDataSourceError("intraday json", err)
	}

	raw, ok := resp.Data[code]
	if !ok {
		return nil, 0, helpers.NewDataSourceError(fmt.Sprintf("intraday payload has no %s", code), nil)
	}

	var stock minuteStock
	if err := json.Unmarshal(raw, &stock); err != nil {
		return nil, 0, helpers.NewDataSourceError("intraday stock json", err)
	}

	prevClose := 0.0
	if qtRaw, ok := stock.Qt[code]; ok {
		var fields []interface{}
		if err := json.Unmarshal(qtRaw, &fields); err == nil && len(fields) >= 5 {
			if d, err := numberOf(fields[4]); err == nil {
				prevClose = d.InexactFloat64()
			}
		}
	}

	day := today
	if d, err := time.ParseInLocation("20060102", stock.Data.Date, today.Location()); err == nil {
		day = d
	}

	points, skipped := buildSeries(stock.Data.Data, day, prevClose, 3)
	return points, skipped, nil
}

// -----------------------------------------------------------------------------
// Five-day feed: fdays_data_sh600000={...}
// -----------------------------------------------------------------------------

var jsonAssignment = regexp.MustCompile(`(?s)=\s*({.*})`)

type fiveDayResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type fiveDayStock struct {
	Data []fiveDayRecord `json:"data"`
}

type fiveDayRecord struct {
	Date string      `json:"date"`
	Prec interface{} `json:"prec"`
	Data []string    `json:"data"`
}

// parseFiveDay strips the variable assignment, keeps the last five day records
// (newest first in the feed) and returns them oldest first, every sample
// relative to the close preceding the oldest day.
func parseFiveDay(body []byte, code string, loc *time.Location) ([]models.MTimePoint, int, error) {
	m := jsonAssignment.FindSubmatch(body)
	if m == nil {
		return nil, 0, helpers.NewDataSourceError("five-day payload has no json body", nil)
	}

	var resp fiveDayResponse
	if err := json.Unmarshal(m[1], &resp); err != nil {
		return nil, 0, helpers.NewDataSourceError("five-day json", err)
	}
	if resp.Code != 0 {
		return nil, 0, helpers.NewDataSourceError(fmt.Sprintf("five-day status %d %s", resp.Code, resp.Msg), nil)
	}

	// On failure "data" is not an object, so it is decoded only after the status check.
	var byCode map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data, &byCode); err != nil {
		return nil, 0, helpers.NewDataSourceError("five-day data json", err)
	}
	raw, ok := byCode[code]
	if !ok {
		return nil, 0, helpers.NewDataSourceError(fmt.Sprintf("five-day payload has no %s", code), nil)
	}
	var stock fiveDayStock
	if err := json.Unmarshal(raw, &stock); err != nil {
		return nil, 0, helpers.NewDataSourceError("five-day stock json", err)
	}

	days := stock.Data
	if len(days) == 0 {
		return nil, 0, helpers.NewDataSourceError("five-day payload has no trading days", nil)
	}
	if len(days) > utils.FiveDayWindow {
		days = days[len(days)-utils.FiveDayWindow:]
	}
	ordered := make([]fiveDayRecord, len(days))
	for i, d := range days {
		ordered[len(days)-1-i] = d
	}

	refClose := 0.0
	if d, err := numberOf(ordered[0].Prec); err == nil {
		refClose = d.InexactFloat64()
	}

	var points []models.MTimePoint
	skipped := 0
	for _, day := range ordered {
		date, err := time.ParseInLocation("20060102", day.Date, loc)
		if err != nil {
			skipped += len(day.Data)
			continue
		}
		dayPoints, daySkipped := buildSeries(day.Data, date, refClose, 2)
		points = append(points, dayPoints...)
		skipped += daySkipped
	}

	return points, skipped, nil
}
