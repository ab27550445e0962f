package broker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quant-trader/internal/ratelimit"
	"quant-trader/internal/types"
)

type fakeTokens map[string]string

func (f fakeTokens) UserToken(_ context.Context, email string) (string, error) {
	return f[email], nil
}

func (f fakeTokens) UpsertUserToken(_ context.Context, email, token string) error {
	f[email] = token
	return nil
}

func newTestGateway(t *testing.T, handler http.Handler) (*Alpaca, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw := New(fakeTokens{"user@example.com": "tok-123"}, ratelimit.New(time.Millisecond), 5*time.Second)
	gw.liveURL = srv.URL
	gw.paperURL = srv.URL
	gw.dataURL = srv.URL
	return gw, srv
}

func TestAccountCashParsesStringBalance(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"cash":"2500.75","status":"ACTIVE"}`))
	}))

	cash, err := gw.AccountCash(context.Background(), "user@example.com", false)
	if err != nil {
		t.Fatalf("AccountCash: %v", err)
	}
	if cash != 2500.75 {
		t.Fatalf("expected cash 2500.75, got %v", cash)
	}
}

func TestMissingTokenIsTypedError(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the brokerage without a token")
	}))

	_, err := gw.AccountCash(context.Background(), "stranger@example.com", false)
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestPlaceMarketOrderBody(t *testing.T) {
	var got map[string]string
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode order body: %v", err)
		}
		w.Write([]byte(`{"id":"abc"}`))
	}))

	err := gw.PlaceMarketOrder(context.Background(), types.OrderTicket{Symbol: "AAPL", Qty: 2.5, Side: "buy"}, "user@example.com", false)
	if err != nil {
		t.Fatalf("PlaceMarketOrder: %v", err)
	}

	want := map[string]string{
		"symbol": "AAPL", "qty": "2.5", "side": "buy",
		"type": "market", "time_in_force": "day",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("order field %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestLatestPriceRejectsZero(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trade":{"p":0}}`))
	}))

	_, err := gw.LatestPrice(context.Background(), "AAPL", "user@example.com", false)
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable, got %v", err)
	}
}

func TestPositionsDecodeStringNumbers(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"TSLA","qty":"3","avg_entry_price":"250.10","current_price":"248.00","unrealized_pl":"-6.30"}]`))
	}))

	positions, err := gw.Positions(context.Background(), "user@example.com", true)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %v", positions)
	}
	p := positions[0]
	if p.Symbol != "TSLA" || p.Qty != 3 || p.AvgEntryPrice != 250.10 || p.CurrentPrice != 248.00 {
		t.Fatalf("position decoded wrong: %+v", p)
	}
}

func TestMarketOpen(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clock" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"is_open":true,"timestamp":"2026-09-01T10:00:00-04:00"}`))
	}))

	open, err := gw.MarketOpen(context.Background(), "user@example.com", false)
	if err != nil {
		t.Fatalf("MarketOpen: %v", err)
	}
	if !open {
		t.Fatal("expected market open")
	}
}
