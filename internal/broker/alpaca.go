package broker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quant-trader/internal/api"
	"quant-trader/internal/interfaces"
	"quant-trader/internal/logger"
	"quant-trader/internal/ratelimit"
	"quant-trader/internal/types"
)

const (
	liveBaseURL  = "https://api.alpaca.markets/v2"
	paperBaseURL = "https://paper-api.alpaca.markets/v2"
	dataBaseURL  = "https://data.alpaca.markets/v2"
)

// ErrMissingToken means the user has not stored a brokerage token yet.
var ErrMissingToken = errors.New("no brokerage token stored for user")

// ErrPriceUnavailable means the data feed returned no usable trade price.
var ErrPriceUnavailable = errors.New("latest trade price unavailable")

// Alpaca is the brokerage gateway. Tokens are resolved per request so a
// refreshed token takes effect without a restart. Order placement goes
// through a shared limiter that enforces minimum spacing and single
// concurrency across every caller in the process.
type Alpaca struct {
	client  *api.Client
	tokens  interfaces.TokenStore
	limiter *ratelimit.Limiter

	liveURL  string
	paperURL string
	dataURL  string
}

// New creates an Alpaca gateway.
func New(tokens interfaces.TokenStore, limiter *ratelimit.Limiter, timeout time.Duration) *Alpaca {
	return &Alpaca{
		client: api.NewClient(
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		tokens:   tokens,
		limiter:  limiter,
		liveURL:  liveBaseURL,
		paperURL: paperBaseURL,
		dataURL:  dataBaseURL,
	}
}

func (a *Alpaca) baseURL(isLive bool) string {
	if isLive {
		return a.liveURL
	}
	return a.paperURL
}

func (a *Alpaca) headers(ctx context.Context, email string) (map[string]string, error) {
	token, err := a.tokens.UserToken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve token for %s: %w", email, err)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingToken, email)
	}
	return api.BearerHeaders(token), nil
}

type accountResponse struct {
	Cash string `json:"cash"`
}

// AccountCash returns the available cash balance for the user's account.
func (a *Alpaca) AccountCash(ctx context.Context, email string, isLive bool) (float64, error) {
	headers, err := a.headers(ctx, email)
	if err != nil {
		return 0, err
	}

	resp, err := a.client.GET(ctx, a.baseURL(isLive)+"/account", headers)
	if err != nil {
		return 0, fmt.Errorf("fetch account: %w", err)
	}

	var account accountResponse
	if err := resp.ParseJSON(&account); err != nil {
		return 0, err
	}

	cash, err := strconv.ParseFloat(account.Cash, 64)
	if err != nil {
		return 0, fmt.Errorf("parse account cash %q: %w", account.Cash, err)
	}
	return cash, nil
}

type latestTradeResponse struct {
	Trade struct {
		Price float64 `json:"p"`
	} `json:"trade"`
}

// LatestPrice returns the most recent trade price for a symbol from the
// brokerage data feed.
func (a *Alpaca) LatestPrice(ctx context.Context, symbol, email string, isLive bool) (float64, error) {
	headers, err := a.headers(ctx, email)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/stocks/%s/trades/latest", a.dataURL, symbol)
	resp, err := a.client.GET(ctx, url, headers)
	if err != nil {
		return 0, fmt.Errorf("fetch latest trade for %s: %w", symbol, err)
	}

	var trade latestTradeResponse
	if err := resp.ParseJSON(&trade); err != nil {
		return 0, err
	}
	if trade.Trade.Price <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}
	return trade.Trade.Price, nil
}

type orderRequest struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
}

// PlaceMarketOrder submits a day market order. The call blocks on the shared
// limiter so orders are spaced out and never placed concurrently.
func (a *Alpaca) PlaceMarketOrder(ctx context.Context, ticket types.OrderTicket, email string, isLive bool) error {
	headers, err := a.headers(ctx, email)
	if err != nil {
		return err
	}

	order := orderRequest{
		Symbol:      ticket.Symbol,
		Qty:         strconv.FormatFloat(ticket.Qty, 'f', -1, 64),
		Side:        ticket.Side,
		Type:        "market",
		TimeInForce: "day",
	}

	return a.limiter.Do(ctx, func() error {
		resp, err := a.client.POST(ctx, a.baseURL(isLive)+"/orders", order, headers)
		if err != nil {
			return fmt.Errorf("place %s order for %s: %w", ticket.Side, ticket.Symbol, err)
		}
		logger.Debug(ctx, "Order accepted", "symbol", ticket.Symbol, "side", ticket.Side, "status", resp.StatusCode)
		return nil
	})
}

// Positions returns the account's open positions.
func (a *Alpaca) Positions(ctx context.Context, email string, isLive bool) ([]types.Position, error) {
	headers, err := a.headers(ctx, email)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.GET(ctx, a.baseURL(isLive)+"/positions", headers)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	var positions []types.Position
	if err := resp.ParseJSON(&positions); err != nil {
		return nil, err
	}
	return positions, nil
}

type clockResponse struct {
	IsOpen bool `json:"is_open"`
}

// MarketOpen reports whether the exchange is currently open for trading.
func (a *Alpaca) MarketOpen(ctx context.Context, email string, isLive bool) (bool, error) {
	headers, err := a.headers(ctx, email)
	if err != nil {
		return false, err
	}

	resp, err := a.client.GET(ctx, a.baseURL(isLive)+"/clock", headers)
	if err != nil {
		return false, fmt.Errorf("fetch market clock: %w", err)
	}

	var clock clockResponse
	if err := resp.ParseJSON(&clock); err != nil {
		return false, err
	}
	return clock.IsOpen, nil
}

var _ interfaces.Gateway = (*Alpaca)(nil)
