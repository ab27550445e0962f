package interfaces

import (
	"context"

	"quant-trader/internal/types"
)

// Gateway is the per-user authenticated brokerage surface.
type Gateway interface {
	AccountCash(ctx context.Context, email string, isLive bool) (float64, error)
	LatestPrice(ctx context.Context, symbol, email string, isLive bool) (float64, error)
	PlaceMarketOrder(ctx context.Context, ticket types.OrderTicket, email string, isLive bool) error
	Positions(ctx context.Context, email string, isLive bool) ([]types.Position, error)
	MarketOpen(ctx context.Context, email string, isLive bool) (bool, error)
}
