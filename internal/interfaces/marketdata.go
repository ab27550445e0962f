package interfaces

import (
	"context"
	"time"

	"quant-trader/internal/types"
)

// MarketData is the external quote/history/news provider.
type MarketData interface {
	HistoricalDaily(ctx context.Context, ticker string, from, to time.Time) ([]types.Candle, error)
	LatestQuote(ctx context.Context, ticker string) (float64, error)
	Fundamentals(ctx context.Context, ticker string) (types.FundamentalSnapshot, error)
	SearchNews(ctx context.Context, ticker string, limit int) ([]types.NewsRef, error)
}
