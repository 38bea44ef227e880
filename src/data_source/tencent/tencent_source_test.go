package tencent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"spread-observer/src/logger"
	"spread-observer/src/models"
	"spread-observer/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

type fakeNetwork struct {
	handler func(url string, params map[string]string) ([]byte, error)
	urls    []string
}

func (f *fakeNetwork) Get(_ context.Context, url string, params map[string]string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.handler(url, params)
}

func newTestSource(handler func(string, map[string]string) ([]byte, error)) (*TencentSource, *fakeNetwork) {
	net := &fakeNetwork{handler: handler}
	src := NewTencentSource(&models.MConfig{}, net, logger.NewSilentLogger("tencent-test"))
	return src, net
}

// realtimeRecord builds one tilde-delimited record with the given fields set.
func realtimeRecord(code, name, price, pct string) string {
	fields := make([]string, 50)
	fields[0] = "1"
	fields[1] = name
	fields[2] = utils.Bare(code)
	fields[3] = price
	fields[32] = pct
	return fmt.Sprintf(`v_%s="%s";`, code, strings.Join(fields, "~"))
}

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

// -----------------------------------------------------------------------------

func TestFetchRealtime_ParsesBatch(t *testing.T) {
	body := realtimeRecord("sh600000", "浦发银行", "10.50", "250") + "\n" +
		realtimeRecord("sz000001", "平安银行", "12.00", "-1.20") + "\n" +
		`v_pv_none_match="1";`

	src, net := newTestSource(func(string, map[string]string) ([]byte, error) {
		return gbk(t, body), nil
	})

	res := src.FetchRealtime(context.Background(), []string{"600000", "000001", "600999"})
	require.False(t, res.Status.Degraded)
	require.Len(t, net.urls, 1)
	assert.Equal(t, DefaultRealtimeURL+"sh600000,sz000001,sh600999", net.urls[0])

	a := res.Data["sh600000"]
	assert.Equal(t, "浦发银行", a.Name)
	assert.InDelta(t, 10.5, a.Price, 1e-9)
	assert.InDelta(t, 2.5, a.ChangePercent, 1e-9)
	assert.True(t, a.Valid)

	b := res.Data["sz000001"]
	assert.InDelta(t, -0.012, b.ChangePercent, 1e-9)

	_, ok := res.Data["sh600999"]
	assert.False(t, ok, "codes absent from the response stay absent")
}

func TestFetchRealtime_SkipsMalformedRecord(t *testing.T) {
	body := realtimeRecord("sh600000", "A", "abc", "1.00") + realtimeRecord("sh600001", "B", "3.00", "1.00")
	src, _ := newTestSource(func(string, map[string]string) ([]byte, error) {
		return gbk(t, body), nil
	})

	res := src.FetchRealtime(context.Background(), []string{"sh600000", "sh600001"})
	assert.False(t, res.Status.Degraded)
	assert.Len(t, res.Data, 1)
	assert.Contains(t, res.Data, "sh600001")
}

func TestFetchRealtime_NetworkFailureYieldsEmptyMap(t *testing.T) {
	src, _ := newTestSource(func(string, map[string]string) ([]byte, error) {
		return nil, errors.New("connection refused")
	})

	res := src.FetchRealtime(context.Background(), []string{"600000"})
	assert.True(t, res.Status.Degraded)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Contains(t, res.Status.Reason, "realtime")
}

// -----------------------------------------------------------------------------

const intradayBody = `{"code":0,"msg":"","data":{"sh600000":{"data":{"data":[
"0930 10.10 100 1010.00",
"0931 10.20 200 2040.00",
"garbage",
"0932 bad 1 1"
],"date":"20240105"},"qt":{"sh600000":["1","浦发银行","600000","10.20","10.00"],"market":["x"]}}}}`

func TestFetchIntraday_RelativeToPreviousClose(t *testing.T) {
	src, _ := newTestSource(func(_ string, params map[string]string) ([]byte, error) {
		assert.Equal(t, "sh600000", params["code"])
		return []byte(intradayBody), nil
	})

	res := src.FetchIntraday(context.Background(), "600000")
	require.False(t, res.Status.Degraded)
	require.Len(t, res.Data, 2, "malformed samples are skipped individually")

	first := res.Data[0]
	assert.Equal(t, time.Date(2024, 1, 5, 9, 30, 0, 0, utils.ShanghaiLocation), first.Timestamp)
	assert.InDelta(t, 10.10, first.Price, 1e-9)
	assert.InDelta(t, 0.01, first.ChangePercent, 1e-9)
	assert.InDelta(t, 0.02, res.Data[1].ChangePercent, 1e-9)
}

func TestFetchIntraday_ZeroPreviousCloseGivesZeroChange(t *testing.T) {
	body := `{"code":0,"data":{"sz000001":{"data":{"data":["1300 12.00 1 1"]},"qt":{}}}}`
	src, _ := newTestSource(func(string, map[string]string) ([]byte, error) {
		return []byte(body), nil
	})
	fixed := time.Date(2024, 3, 1, 14, 0, 0, 0, utils.ShanghaiLocation)
	src.SetClock(func() time.Time { return fixed })

	res := src.FetchIntraday(context.Background(), "sz000001")
	require.Len(t, res.Data, 1)
	assert.Equal(t, 0.0, res.Data[0].ChangePercent)
	assert.Equal(t, time.Date(2024, 3, 1, 13, 0, 0, 0, utils.ShanghaiLocation), res.Data[0].Timestamp)
}

func TestFetchIntraday_MissingCodeDegrades(t *testing.T) {
	src, _ := newTestSource(func(string, map[string]string) ([]byte, error) {
		return []byte(`{"code":0,"data":{}}`), nil
	})

	res := src.FetchIntraday(context.Background(), "600000")
	assert.True(t, res.Status.Degraded)
	assert.Empty(t, res.Data)
}

// -----------------------------------------------------------------------------

// Feed order is newest day first.
const fiveDayBody = `fdays_data_sh600000={"code":0,"msg":"","data":{"sh600000":{"data":[
{"date":"20240108","prec":"10.40","data":["0930 10.60","1500 10.70"]},
{"date":"20240105","prec":"10.30","data":["0930 10.40"]},
{"date":"20240104","prec":"10.20","data":["0930 10.30"]},
{"date":"20240103","prec":"10.10","data":["0930 10.20"]},
{"date":"20240102","prec":10.00,"data":["0930 10.10","oops"]},
{"date":"20231229","prec":"9.90","data":["0930 10.00"]}
]}}}`

func TestFetchFiveDay_OldestFirstAgainstSingleReference(t *testing.T) {
	src, _ := newTestSource(func(_ string, params map[string]string) ([]byte, error) {
		assert.Equal(t, "fdays_data_sh600000", params["_var"])
		return []byte(fiveDayBody), nil
	})

	res := src.FetchFiveDay(context.Background(), "sh600000")
	require.False(t, res.Status.Degraded)
	// Only the trailing five records are kept; one sample is malformed.
	require.Len(t, res.Data, 5)

	first := res.Data[0]
	assert.Equal(t, time.Date(2023, 12, 29, 9, 30, 0, 0, utils.ShanghaiLocation), first.Timestamp)
	assert.InDelta(t, (10.00-9.90)/9.90, first.ChangePercent, 1e-9)

	last := res.Data[len(res.Data)-1]
	assert.Equal(t, time.Date(2024, 1, 5, 9, 30, 0, 0, utils.ShanghaiLocation), last.Timestamp)
	assert.InDelta(t, (10.40-9.90)/9.90, last.ChangePercent, 1e-9)
}

func TestFetchFiveDay_NonZeroStatusDegrades(t *testing.T) {
	src, _ := newTestSource(func(string, map[string]string) ([]byte, error) {
		return []byte(`fdays_data_sh600000={"code":-1,"msg":"param error","data":[]}`), nil
	})

	res := src.FetchFiveDay(context.Background(), "sh600000")
	assert.True(t, res.Status.Degraded)
	assert.Empty(t, res.Data)
	assert.Contains(t, res.Status.Reason, "param error")
}

func TestFetchFiveDay_CancelledContextDegrades(t *testing.T) {
	src, _ := newTestSource(func(string, map[string]string) ([]byte, error) {
		return nil, context.Canceled
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := src.FetchFiveDay(ctx, "sh600000")
	assert.True(t, res.Status.Degraded)
}
