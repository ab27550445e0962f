package screener

import (
	"testing"

	"quant-trader/internal/types"
)

func strongFundamentals(ticker string) types.FundamentalSnapshot {
	return types.FundamentalSnapshot{
		Ticker:        ticker,
		PERatio:       20,
		PEGRatio:      1.2,
		DividendYield: 0.02,
		PayoutRatio:   0.3,
		Revenue:       1e9,
		ProfitMargin:  0.15,
		FreeCashFlow:  2e8,
	}
}

func bullishTechnicals(ticker string) types.TechnicalSnapshot {
	return types.TechnicalSnapshot{Ticker: ticker, SMA20: 110, SMA50: 100, EMA20: 111, EMA50: 101, RSI14: 75}
}

func bearishTechnicals(ticker string) types.TechnicalSnapshot {
	return types.TechnicalSnapshot{Ticker: ticker, SMA20: 90, SMA50: 100, EMA20: 89, EMA50: 99, RSI14: 25}
}

func TestLongCandidateSelected(t *testing.T) {
	long, short := Screen(
		[]types.TechnicalSnapshot{bullishTechnicals("AAPL")},
		[]types.FundamentalSnapshot{strongFundamentals("AAPL")},
		DefaultThresholds(),
	)

	if len(long) != 1 || long[0].Ticker != "AAPL" {
		t.Fatalf("expected AAPL in long candidates, got %+v", long)
	}
	if len(short) != 0 {
		t.Fatalf("AAPL must never appear in short candidates, got %+v", short)
	}
	if long[0].PERatio != 20 || long[0].RSI14 != 75 {
		t.Fatalf("candidate must carry joined snapshot values, got %+v", long[0])
	}
}

func TestShortCandidateSelected(t *testing.T) {
	f := strongFundamentals("BAD")
	f.ProfitMargin = -0.05

	long, short := Screen(
		[]types.TechnicalSnapshot{bearishTechnicals("BAD")},
		[]types.FundamentalSnapshot{f},
		DefaultThresholds(),
	)

	if len(short) != 1 || short[0].Ticker != "BAD" {
		t.Fatalf("expected BAD in short candidates, got %+v", short)
	}
	if len(long) != 0 {
		t.Fatalf("expected no long candidates, got %+v", long)
	}
}

func TestMissingFundamentalsSkipsTicker(t *testing.T) {
	long, short := Screen(
		[]types.TechnicalSnapshot{bullishTechnicals("GHOST")},
		nil,
		DefaultThresholds(),
	)
	if len(long) != 0 || len(short) != 0 {
		t.Fatalf("ticker without fundamentals must be skipped, got long=%v short=%v", long, short)
	}
}

func TestNeutralTickerDropped(t *testing.T) {
	// Bullish technicals but weak RSI: neither gate fires.
	tech := bullishTechnicals("MEH")
	tech.RSI14 = 50

	long, short := Screen(
		[]types.TechnicalSnapshot{tech},
		[]types.FundamentalSnapshot{strongFundamentals("MEH")},
		DefaultThresholds(),
	)
	if len(long) != 0 || len(short) != 0 {
		t.Fatalf("neutral ticker must land in neither list, got long=%v short=%v", long, short)
	}
}

func TestExpensivePEExcludedFromLong(t *testing.T) {
	f := strongFundamentals("RICH")
	f.PERatio = 45

	long, short := Screen(
		[]types.TechnicalSnapshot{bullishTechnicals("RICH")},
		[]types.FundamentalSnapshot{f},
		DefaultThresholds(),
	)
	if len(long) != 0 || len(short) != 0 {
		t.Fatalf("P/E above cap must exclude from long without demoting to short, got long=%v short=%v", long, short)
	}
}

func TestListsAreDisjoint(t *testing.T) {
	weak := strongFundamentals("DOWN")
	weak.FreeCashFlow = -1

	long, short := Screen(
		[]types.TechnicalSnapshot{bullishTechnicals("UP"), bearishTechnicals("DOWN")},
		[]types.FundamentalSnapshot{strongFundamentals("UP"), weak},
		DefaultThresholds(),
	)

	seen := map[string]bool{}
	for _, c := range long {
		seen[c.Ticker] = true
	}
	for _, c := range short {
		if seen[c.Ticker] {
			t.Fatalf("ticker %s present in both lists", c.Ticker)
		}
	}
	if len(long) != 1 || len(short) != 1 {
		t.Fatalf("expected one candidate per side, got long=%v short=%v", long, short)
	}
}
