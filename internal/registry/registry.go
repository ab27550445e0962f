package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"quant-trader/internal/logger"
)

// TickerStore is the persistence surface the registry flushes to.
type TickerStore interface {
	Tickers(ctx context.Context) ([]string, error)
	SaveTickers(ctx context.Context, tickers []string) error
}

// Registry owns the tracked ticker universe: an in-memory set with
// write-through persistence. It replaces ambient global state with an
// explicit service.
type Registry struct {
	mu      sync.RWMutex
	tickers map[string]struct{}
	store   TickerStore
}

// Load builds the registry from the store, seeding from the static list
// when the store is empty (first boot).
func Load(ctx context.Context, store TickerStore, seed []string) (*Registry, error) {
	persisted, err := store.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	r := &Registry{tickers: make(map[string]struct{}), store: store}
	source := persisted
	if len(source) == 0 {
		source = seed
	}
	for _, t := range source {
		t = normalize(t)
		if t != "" {
			r.tickers[t] = struct{}{}
		}
	}

	if len(persisted) == 0 && len(r.tickers) > 0 {
		if err := r.flush(ctx); err != nil {
			return nil, err
		}
		logger.Info(ctx, "Seeded ticker universe from static list", "count", len(r.tickers))
	}
	return r, nil
}

// All returns the tracked tickers, sorted.
func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.tickers))
	for t := range r.tickers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether a ticker is tracked.
func (r *Registry) Contains(ticker string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tickers[normalize(ticker)]
	return ok
}

// Add tracks a ticker and flushes the universe to the store.
func (r *Registry) Add(ctx context.Context, ticker string) error {
	t := normalize(ticker)
	if t == "" {
		return nil
	}
	r.mu.Lock()
	r.tickers[t] = struct{}{}
	r.mu.Unlock()
	return r.flush(ctx)
}

// Remove untracks a ticker and flushes the universe to the store.
func (r *Registry) Remove(ctx context.Context, ticker string) error {
	r.mu.Lock()
	delete(r.tickers, normalize(ticker))
	r.mu.Unlock()
	return r.flush(ctx)
}

func (r *Registry) flush(ctx context.Context) error {
	return r.store.SaveTickers(ctx, r.All())
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
