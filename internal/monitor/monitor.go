package monitor

import (
	"context"
	"math"

	"quant-trader/internal/interfaces"
	"quant-trader/internal/logger"
	"quant-trader/internal/tradelog"
	"quant-trader/internal/types"
)

// Monitor walks open positions and closes any that crossed the stop-loss or
// take-profit band relative to its entry price.
type Monitor struct {
	gateway       interfaces.Gateway
	journal       *tradelog.Log
	stopLossPct   float64
	takeProfitPct float64
}

// New creates a monitor. stopLossPct and takeProfitPct are multipliers on
// the entry price (0.99 and 1.03 by default).
func New(gateway interfaces.Gateway, journal *tradelog.Log, stopLossPct, takeProfitPct float64) *Monitor {
	return &Monitor{
		gateway:       gateway,
		journal:       journal,
		stopLossPct:   stopLossPct,
		takeProfitPct: takeProfitPct,
	}
}

// Run checks every open position once. A position triggers at most one exit
// order per pass; when a price satisfies both bands the stop-loss wins.
// Per-position failures are logged and the pass continues.
func (m *Monitor) Run(ctx context.Context, email string, isLive bool) error {
	positions, err := m.gateway.Positions(ctx, email, isLive)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Monitoring positions", "email", email, "count", len(positions), "live", isLive)

	for _, p := range positions {
		if err := m.checkPosition(ctx, email, p, isLive); err != nil {
			logger.Warn(ctx, "Position check failed", "symbol", p.Symbol, "error", err)
		}
	}
	return nil
}

func (m *Monitor) checkPosition(ctx context.Context, email string, p types.Position, isLive bool) error {
	price, err := m.gateway.LatestPrice(ctx, p.Symbol, email, isLive)
	if err != nil {
		return err
	}

	stop := p.AvgEntryPrice * m.stopLossPct
	target := p.AvgEntryPrice * m.takeProfitPct

	var trigger string
	if price <= stop {
		trigger = "stop_loss"
	} else if price >= target {
		trigger = "take_profit"
	} else {
		return nil
	}

	return m.exit(ctx, email, p, price, trigger, isLive)
}

// exit closes the full position with a single market order. Short positions
// carry negative quantities and are closed with a buy.
func (m *Monitor) exit(ctx context.Context, email string, p types.Position, price float64, trigger string, isLive bool) error {
	side := "sell"
	qty := p.Qty
	if qty < 0 {
		side = "buy"
		qty = math.Abs(qty)
	}

	ticket := types.OrderTicket{Symbol: p.Symbol, Qty: qty, Side: side}
	if err := m.gateway.PlaceMarketOrder(ctx, ticket, email, isLive); err != nil {
		return err
	}

	logger.Exit(ctx, p.Symbol, trigger, p.AvgEntryPrice, price, "email", email, "qty", qty)
	if m.journal != nil {
		m.journal.Exit(email, p.Symbol, trigger, qty, p.AvgEntryPrice, price)
	}
	return nil
}
