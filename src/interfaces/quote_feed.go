package interfaces

import (
	"context"

	"spread-observer/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteFeed fetches quotes and minute series from the upstream feeds.
// Implementations never return errors: failures come back as degraded results.
// -----------------------------------------------------------------------------

type IQuoteFeed interface {

	// FetchRealtime issues one batched request for all codes. Codes missing
	// from the response are absent from the map.
	FetchRealtime(ctx context.Context, codes []string) models.MFetchResult[map[string]models.MQuote]

	// -----------------------------------------------------------------------------

	// FetchIntraday returns today's minute series relative to yesterday's close.
	FetchIntraday(ctx context.Context, code string) models.MFetchResult[[]models.MTimePoint]

	// -----------------------------------------------------------------------------

	// FetchFiveDay returns the last five trading days of minute samples relative
	// to the close preceding the oldest day.
	FetchFiveDay(ctx context.Context, code string) models.MFetchResult[[]models.MTimePoint]
}
