package screener

import (
	"quant-trader/internal/types"
)

// Thresholds are the deterministic screening gates.
type Thresholds struct {
	RSILongMin  float64 // long requires rsi14 above this
	RSIShortMax float64 // short requires rsi14 below this
	MaxPERatio  float64 // long requires a positive P/E below this
}

// DefaultThresholds matches the production screening rules.
func DefaultThresholds() Thresholds {
	return Thresholds{RSILongMin: 70, RSIShortMax: 30, MaxPERatio: 30}
}

// Screen joins technical and fundamental snapshots by ticker and buckets
// them into disjoint long and short candidate lists. Tickers without a
// fundamental match are skipped entirely; tickers satisfying neither gate
// are dropped from both lists.
func Screen(technicals []types.TechnicalSnapshot, fundamentals []types.FundamentalSnapshot, th Thresholds) (long, short []types.Candidate) {
	byTicker := make(map[string]types.FundamentalSnapshot, len(fundamentals))
	for _, f := range fundamentals {
		byTicker[f.Ticker] = f
	}

	for _, t := range technicals {
		f, ok := byTicker[t.Ticker]
		if !ok {
			continue
		}

		technicallyLong := t.SMA20 > t.SMA50 && t.EMA20 > t.EMA50 && t.RSI14 > th.RSILongMin
		fundamentallyStrong := f.PERatio > 0 && f.PERatio < th.MaxPERatio &&
			f.PEGRatio > 0 && f.ProfitMargin > 0 && f.DividendYield > 0 &&
			f.PayoutRatio > 0 && f.Revenue > 0 && f.FreeCashFlow > 0

		technicallyShort := t.SMA20 < t.SMA50 && t.EMA20 < t.EMA50 && t.RSI14 < th.RSIShortMax
		fundamentallyWeak := f.PERatio < 0 || f.PEGRatio < 0 || f.ProfitMargin < 0 ||
			f.DividendYield < 0 || f.PayoutRatio < 0 || f.Revenue < 0 || f.FreeCashFlow < 0

		switch {
		case technicallyLong && fundamentallyStrong:
			long = append(long, join(t, f))
		case technicallyShort && fundamentallyWeak:
			short = append(short, join(t, f))
		}
	}
	return long, short
}

func join(t types.TechnicalSnapshot, f types.FundamentalSnapshot) types.Candidate {
	return types.Candidate{
		Ticker:        t.Ticker,
		SMA20:         t.SMA20,
		SMA50:         t.SMA50,
		EMA20:         t.EMA20,
		EMA50:         t.EMA50,
		RSI14:         t.RSI14,
		PERatio:       f.PERatio,
		PEGRatio:      f.PEGRatio,
		DividendYield: f.DividendYield,
		PayoutRatio:   f.PayoutRatio,
		Revenue:       f.Revenue,
		ProfitMargin:  f.ProfitMargin,
		FreeCashFlow:  f.FreeCashFlow,
	}
}
