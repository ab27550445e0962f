package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"quant-trader/internal/interfaces"
	"quant-trader/internal/logger"
	"quant-trader/internal/registry"
	"quant-trader/internal/screener"
	"quant-trader/internal/sentiment"
	"quant-trader/internal/ta"
	"quant-trader/internal/types"
)

// ErrCycleInProgress is returned when a refresh is requested while another
// cycle is still running. Cycles never queue up behind each other.
var ErrCycleInProgress = errors.New("analysis cycle already in progress")

// historyLookback covers the 50-day indicators with margin for non-trading days.
const historyLookback = 70 * 24 * time.Hour

// maxConcurrentTickers bounds the fan-out against the quote provider.
const maxConcurrentTickers = 4

// Scorer produces per-ticker article scores for the sentiment gate.
type Scorer interface {
	ScoreTickers(ctx context.Context, tickers []string) map[string][]types.ArticleScore
}

// Service runs the full analysis cycle: refresh indicator and fundamental
// snapshots for the tracked universe, screen them into long and short
// candidates, gate the candidates on news sentiment, and atomically replace
// the persisted lists.
type Service struct {
	md         interfaces.MarketData
	snapshots  interfaces.SnapshotStore
	candidates interfaces.CandidateStore
	universe   *registry.Registry
	scorer     Scorer
	gate       sentiment.Gate
	thresholds screener.Thresholds

	mu sync.Mutex
}

// New creates the analysis service.
func New(md interfaces.MarketData, snapshots interfaces.SnapshotStore, candidates interfaces.CandidateStore,
	universe *registry.Registry, scorer Scorer, gate sentiment.Gate, thresholds screener.Thresholds) *Service {
	return &Service{
		md:         md,
		snapshots:  snapshots,
		candidates: candidates,
		universe:   universe,
		scorer:     scorer,
		gate:       gate,
		thresholds: thresholds,
	}
}

// RunCycle executes one analysis cycle. A cycle already in flight causes an
// immediate ErrCycleInProgress instead of a queued duplicate.
func (s *Service) RunCycle(ctx context.Context) error {
	if !s.mu.TryLock() {
		return ErrCycleInProgress
	}
	defer s.mu.Unlock()

	timer := logger.StartOperation(ctx, "analysis_cycle")
	ctx = timer.GetContext()

	tickers := s.universe.All()
	logger.Info(ctx, "Starting analysis cycle", "tickers", len(tickers))

	s.refreshSnapshots(ctx, tickers)

	technicals, err := s.snapshots.Technicals(ctx)
	if err != nil {
		timer.EndWithError(err)
		return err
	}
	fundamentals, err := s.snapshots.Fundamentals(ctx)
	if err != nil {
		timer.EndWithError(err)
		return err
	}

	long, short := screener.Screen(technicals, fundamentals, s.thresholds)
	logger.Info(ctx, "Screening complete", "long", len(long), "short", len(short))

	scores := s.scorer.ScoreTickers(ctx, candidateTickers(long, short))
	long, short = s.gate.Apply(long, short, scores)
	logger.Info(ctx, "Sentiment gate applied", "long", len(long), "short", len(short))

	if err := s.candidates.ReplaceCandidates(ctx, long, short); err != nil {
		timer.EndWithError(err)
		return err
	}

	timer.End()
	return nil
}

// refreshSnapshots updates technical and fundamental snapshots for every
// ticker. A ticker that fails is logged and keeps its previous snapshot; the
// cycle continues with the rest of the universe.
func (s *Service) refreshSnapshots(ctx context.Context, tickers []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTickers)

	for _, ticker := range tickers {
		g.Go(func() error {
			if err := s.refreshTicker(gctx, ticker); err != nil {
				logger.Warn(gctx, "Skipping ticker this cycle", "ticker", ticker, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) refreshTicker(ctx context.Context, ticker string) error {
	to := time.Now()
	from := to.Add(-historyLookback)

	candles, err := s.md.HistoricalDaily(ctx, ticker, from, to)
	if err != nil {
		return err
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	tech := types.TechnicalSnapshot{
		Ticker: ticker,
		SMA20:  ta.SMA(closes, 20),
		SMA50:  ta.SMA(closes, 50),
		EMA20:  ta.EMA(closes, 20),
		EMA50:  ta.EMA(closes, 50),
		RSI14:  ta.RSI(closes, 14),
	}
	if err := s.snapshots.UpsertTechnical(ctx, tech); err != nil {
		return err
	}

	fund, err := s.md.Fundamentals(ctx, ticker)
	if err != nil {
		return err
	}
	return s.snapshots.UpsertFundamental(ctx, fund)
}

func candidateTickers(long, short []types.Candidate) []string {
	out := make([]string, 0, len(long)+len(short))
	for _, c := range long {
		out = append(out, c.Ticker)
	}
	for _, c := range short {
		out = append(out, c.Ticker)
	}
	return out
}
