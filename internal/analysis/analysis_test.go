package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quant-trader/internal/registry"
	"quant-trader/internal/screener"
	"quant-trader/internal/sentiment"
	"quant-trader/internal/types"
)

type fakeMarketData struct {
	mu       sync.Mutex
	closes   map[string][]float64
	funds    map[string]types.FundamentalSnapshot
	failFor  map[string]bool
	entered  chan struct{}
	blocker  chan struct{}
	once     sync.Once
	requests []string
}

func (f *fakeMarketData) HistoricalDaily(ctx context.Context, ticker string, _, _ time.Time) ([]types.Candle, error) {
	if f.blocker != nil {
		f.once.Do(func() { close(f.entered) })
		<-f.blocker
	}
	f.mu.Lock()
	f.requests = append(f.requests, ticker)
	f.mu.Unlock()
	if f.failFor[ticker] {
		return nil, errors.New("provider down")
	}
	closes := f.closes[ticker]
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{Ts: int64(i), Close: c}
	}
	return candles, nil
}

func (f *fakeMarketData) LatestQuote(context.Context, string) (float64, error) {
	return 0, errors.New("not used")
}

func (f *fakeMarketData) Fundamentals(_ context.Context, ticker string) (types.FundamentalSnapshot, error) {
	if f.failFor[ticker] {
		return types.FundamentalSnapshot{}, errors.New("provider down")
	}
	return f.funds[ticker], nil
}

func (f *fakeMarketData) SearchNews(context.Context, string, int) ([]types.NewsRef, error) {
	return nil, nil
}

type fakeSnapshotStore struct {
	mu    sync.Mutex
	techs map[string]types.TechnicalSnapshot
	funds map[string]types.FundamentalSnapshot
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{
		techs: map[string]types.TechnicalSnapshot{},
		funds: map[string]types.FundamentalSnapshot{},
	}
}

func (f *fakeSnapshotStore) UpsertTechnical(_ context.Context, t types.TechnicalSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.techs[t.Ticker] = t
	return nil
}

func (f *fakeSnapshotStore) Technicals(context.Context) ([]types.TechnicalSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.TechnicalSnapshot, 0, len(f.techs))
	for _, t := range f.techs {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeSnapshotStore) UpsertFundamental(_ context.Context, fs types.FundamentalSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.funds[fs.Ticker] = fs
	return nil
}

func (f *fakeSnapshotStore) Fundamentals(context.Context) ([]types.FundamentalSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.FundamentalSnapshot, 0, len(f.funds))
	for _, fs := range f.funds {
		out = append(out, fs)
	}
	return out, nil
}

type fakeCandidateStore struct {
	mu          sync.Mutex
	long, short []types.Candidate
	replaced    int
}

func (f *fakeCandidateStore) Candidates(context.Context) ([]types.Candidate, []types.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.long, f.short, nil
}

func (f *fakeCandidateStore) ReplaceCandidates(_ context.Context, long, short []types.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.long, f.short = long, short
	f.replaced++
	return nil
}

type fakeScorer struct {
	scores map[string][]types.ArticleScore
}

func (f *fakeScorer) ScoreTickers(_ context.Context, tickers []string) map[string][]types.ArticleScore {
	out := map[string][]types.ArticleScore{}
	for _, t := range tickers {
		if s, ok := f.scores[t]; ok {
			out[t] = s
		}
	}
	return out
}

type memTickerStore struct{ tickers []string }

func (m *memTickerStore) Tickers(context.Context) ([]string, error) { return m.tickers, nil }
func (m *memTickerStore) SaveTickers(_ context.Context, t []string) error {
	m.tickers = t
	return nil
}

// risingCloses produces a strictly rising series so SMA20 > SMA50,
// EMA20 > EMA50 and RSI14 pegs at 100.
func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func newTestService(t *testing.T, md *fakeMarketData, snaps *fakeSnapshotStore, cands *fakeCandidateStore, scorer *fakeScorer, tickers []string) *Service {
	t.Helper()
	reg, err := registry.Load(context.Background(), &memTickerStore{tickers: tickers}, nil)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return New(md, snaps, cands, reg, scorer, sentiment.Gate{LongMin: 15, ShortMax: 20}, screener.DefaultThresholds())
}

func TestRunCycleProducesGatedCandidates(t *testing.T) {
	md := &fakeMarketData{
		closes: map[string][]float64{"AAPL": risingCloses(60)},
		funds: map[string]types.FundamentalSnapshot{
			"AAPL": {Ticker: "AAPL", PERatio: 20, PEGRatio: 1, DividendYield: 0.01, PayoutRatio: 0.2, Revenue: 1e9, ProfitMargin: 0.2, FreeCashFlow: 1e8},
		},
	}
	snaps := newFakeSnapshotStore()
	cands := &fakeCandidateStore{}
	scorer := &fakeScorer{scores: map[string][]types.ArticleScore{"AAPL": {{Score: 30}}}}

	svc := newTestService(t, md, snaps, cands, scorer, []string{"AAPL"})
	if err := svc.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(cands.long) != 1 || cands.long[0].Ticker != "AAPL" {
		t.Fatalf("expected AAPL long candidate, got %+v", cands.long)
	}
	if cands.long[0].Sentiment != 30 {
		t.Fatalf("candidate must carry its sentiment score, got %v", cands.long[0].Sentiment)
	}
	if cands.replaced != 1 {
		t.Fatalf("candidates must be replaced exactly once, got %d", cands.replaced)
	}
}

func TestRunCycleSkipsFailingTicker(t *testing.T) {
	md := &fakeMarketData{
		closes: map[string][]float64{"AAPL": risingCloses(60)},
		funds: map[string]types.FundamentalSnapshot{
			"AAPL": {Ticker: "AAPL", PERatio: 20, PEGRatio: 1, DividendYield: 0.01, PayoutRatio: 0.2, Revenue: 1e9, ProfitMargin: 0.2, FreeCashFlow: 1e8},
		},
		failFor: map[string]bool{"DOWN": true},
	}
	snaps := newFakeSnapshotStore()
	cands := &fakeCandidateStore{}
	scorer := &fakeScorer{scores: map[string][]types.ArticleScore{"AAPL": {{Score: 30}}}}

	svc := newTestService(t, md, snaps, cands, scorer, []string{"AAPL", "DOWN"})
	if err := svc.RunCycle(context.Background()); err != nil {
		t.Fatalf("one bad ticker must not fail the cycle: %v", err)
	}

	if _, ok := snaps.techs["DOWN"]; ok {
		t.Fatal("failed ticker must not produce a snapshot")
	}
	if len(cands.long) != 1 {
		t.Fatalf("healthy ticker must still be screened, got %+v", cands.long)
	}
}

func TestRunCycleRejectsConcurrentRun(t *testing.T) {
	md := &fakeMarketData{
		closes:  map[string][]float64{"AAPL": risingCloses(60)},
		funds:   map[string]types.FundamentalSnapshot{"AAPL": {Ticker: "AAPL"}},
		entered: make(chan struct{}),
		blocker: make(chan struct{}),
	}
	snaps := newFakeSnapshotStore()
	cands := &fakeCandidateStore{}
	scorer := &fakeScorer{}

	svc := newTestService(t, md, snaps, cands, scorer, []string{"AAPL"})

	done := make(chan error, 1)
	go func() { done <- svc.RunCycle(context.Background()) }()

	// Wait until the first cycle is inside the market-data call, so it is
	// guaranteed to hold the cycle lock.
	select {
	case <-md.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never reached the market-data call")
	}

	if err := svc.RunCycle(context.Background()); !errors.Is(err, ErrCycleInProgress) {
		t.Fatalf("expected ErrCycleInProgress, got %v", err)
	}

	close(md.blocker)
	if err := <-done; err != nil {
		t.Fatalf("first cycle: %v", err)
	}
}
