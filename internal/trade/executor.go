package trade

import (
	"context"
	"errors"
	"fmt"
	"math"

	"quant-trader/internal/interfaces"
	"quant-trader/internal/logger"
	"quant-trader/internal/tradelog"
	"quant-trader/internal/types"
)

// ErrInsufficientBalance means the requested amount exceeds account cash.
var ErrInsufficientBalance = errors.New("requested amount exceeds account cash")

// ErrNoCandidates means no screened candidates exist to trade.
var ErrNoCandidates = errors.New("no candidates available")

// minExecutionSentiment is the per-candidate floor applied at execution time
// when sentiment gating is enabled.
const minExecutionSentiment = 0.5

// RemoteScheduler registers externally-driven recurring monitoring for a
// user. Registration failures never fail a trade.
type RemoteScheduler interface {
	EnsureMonitorSchedule(ctx context.Context, email string, isLive bool) error
}

// Executor sizes and places market orders across the current candidate
// lists: buys for longs, sells for shorts, equal cash allocation per
// candidate.
type Executor struct {
	gateway    interfaces.Gateway
	candidates interfaces.CandidateStore
	registrar  interfaces.MonitorRegistrar
	remote     RemoteScheduler
	journal    *tradelog.Log
}

// New creates an executor. remote may be nil when remote scheduling is
// disabled.
func New(gateway interfaces.Gateway, candidates interfaces.CandidateStore,
	registrar interfaces.MonitorRegistrar, remote RemoteScheduler, journal *tradelog.Log) *Executor {
	return &Executor{
		gateway:    gateway,
		candidates: candidates,
		registrar:  registrar,
		remote:     remote,
		journal:    journal,
	}
}

// Report is the outcome of one execution batch. Orders holds one entry per
// attempted candidate; a failed order is recorded there and never aborts the
// rest of the batch.
type Report struct {
	Long   []types.Candidate   `json:"longCandidates"`
	Short  []types.Candidate   `json:"shortCandidates"`
	Orders []types.OrderResult `json:"orders"`
}

// Execute places market orders for every current candidate, splitting amount
// equally across them. Preconditions (balance, candidate availability) fail
// the whole call; per-order failures are reported in the Report instead.
func (e *Executor) Execute(ctx context.Context, email string, amount float64, isLive, sentimentEnabled bool) (*Report, error) {
	cash, err := e.gateway.AccountCash(ctx, email, isLive)
	if err != nil {
		return nil, err
	}
	if amount > cash {
		return nil, fmt.Errorf("%w: requested %.2f, cash %.2f", ErrInsufficientBalance, amount, cash)
	}

	long, short, err := e.candidates.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	if len(long)+len(short) == 0 {
		return nil, ErrNoCandidates
	}

	allocation := amount / float64(len(long)+len(short))
	logger.Info(ctx, "Executing candidate batch",
		"email", email, "long", len(long), "short", len(short),
		"allocation", allocation, "live", isLive)

	report := &Report{Long: long, Short: short}
	mode := modeLabel(isLive)
	for _, c := range long {
		report.Orders = append(report.Orders, e.placeOrder(ctx, email, c, "buy", allocation, isLive, sentimentEnabled, mode))
	}
	for _, c := range short {
		report.Orders = append(report.Orders, e.placeOrder(ctx, email, c, "sell", allocation, isLive, sentimentEnabled, mode))
	}

	e.registerMonitoring(ctx, email, isLive)
	return report, nil
}

func (e *Executor) placeOrder(ctx context.Context, email string, c types.Candidate, side string,
	allocation float64, isLive, sentimentEnabled bool, mode string) types.OrderResult {
	result := types.OrderResult{Symbol: c.Ticker, Side: side}

	if sentimentEnabled && c.Sentiment <= minExecutionSentiment {
		result.Reason = "sentiment below execution floor"
		logger.Info(ctx, "Skipping candidate on sentiment", "symbol", c.Ticker, "sentiment", c.Sentiment)
		return result
	}

	price, err := e.gateway.LatestPrice(ctx, c.Ticker, email, isLive)
	if err != nil {
		result.Err = err
		result.Reason = "price lookup failed"
		logger.Warn(ctx, "Order skipped, no price", "symbol", c.Ticker, "error", err)
		return result
	}

	qty := round2(allocation / price)
	if qty <= 0 {
		result.Reason = "allocation too small for one share fraction"
		return result
	}

	ticket := types.OrderTicket{Symbol: c.Ticker, Qty: qty, Side: side}
	if err := e.gateway.PlaceMarketOrder(ctx, ticket, email, isLive); err != nil {
		result.Err = err
		result.Reason = "order rejected"
		logger.Warn(ctx, "Order failed", "symbol", c.Ticker, "side", side, "error", err)
		return result
	}

	result.Qty = qty
	result.Price = price
	logger.Trade(ctx, c.Ticker, side, qty, price, "email", email, "mode", mode)
	if e.journal != nil {
		e.journal.Order(email, c.Ticker, side, qty, price, mode)
	}
	return result
}

// registerMonitoring wires up recurring position monitoring after a batch.
// Both tiers are best effort from the trade's perspective.
func (e *Executor) registerMonitoring(ctx context.Context, email string, isLive bool) {
	if e.registrar != nil {
		e.registrar.StartMonitoring(email, isLive)
	}
	if e.remote != nil {
		if err := e.remote.EnsureMonitorSchedule(ctx, email, isLive); err != nil {
			logger.Warn(ctx, "Remote monitor schedule failed", "email", email, "error", err)
		}
	}
}

func modeLabel(isLive bool) string {
	if isLive {
		return "live"
	}
	return "paper"
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
