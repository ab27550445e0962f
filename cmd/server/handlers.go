package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quant-trader/internal/analysis"
	"quant-trader/internal/broker"
	"quant-trader/internal/interfaces"
	"quant-trader/internal/logger"
	"quant-trader/internal/monitor"
	"quant-trader/internal/registry"
	"quant-trader/internal/trade"
)

type server struct {
	analyzer *analysis.Service
	executor *trade.Executor
	monitor  *monitor.Monitor
	gateway  interfaces.Gateway
	universe *registry.Registry
	tokens   interfaces.TokenStore
}

func newRouter(s *server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/update", s.handleUpdate)
	mux.HandleFunc("POST /api/v1/trade", s.handleTrade)
	mux.HandleFunc("POST /api/v1/monitor", s.handleMonitor)
	mux.HandleFunc("GET /api/v1/price", s.handlePrice)
	mux.HandleFunc("GET /api/v1/clock", s.handleClock)
	mux.HandleFunc("GET /api/v1/tickers", s.handleListTickers)
	mux.HandleFunc("POST /api/v1/tickers", s.handleAddTicker)
	mux.HandleFunc("DELETE /api/v1/tickers/{ticker}", s.handleRemoveTicker)
	mux.HandleFunc("POST /api/v1/token", s.handleStoreToken)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	err := s.analyzer.RunCycle(r.Context())
	switch {
	case errors.Is(err, analysis.ErrCycleInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		logger.ErrorWithErr(r.Context(), "Analysis cycle failed", err)
		writeError(w, http.StatusInternalServerError, "analysis cycle failed")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

type tradeRequest struct {
	Email         string  `json:"email"`
	Amount        float64 `json:"amount"`
	IsLiveTrading bool    `json:"isLiveTrading"`
	UseSentiment  bool    `json:"useSentiment"`
}

func (s *server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "email and a positive amount are required")
		return
	}

	report, err := s.executor.Execute(r.Context(), req.Email, req.Amount, req.IsLiveTrading, req.UseSentiment)
	switch {
	case errors.Is(err, trade.ErrInsufficientBalance),
		errors.Is(err, trade.ErrNoCandidates):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, broker.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case err != nil:
		logger.ErrorWithErr(r.Context(), "Trade execution failed", err)
		writeError(w, http.StatusInternalServerError, "trade execution failed")
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

type monitorRequest struct {
	Email         string `json:"email"`
	IsLiveTrading bool   `json:"isLiveTrading"`
}

func (s *server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	var req monitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.monitor.Run(r.Context(), req.Email, req.IsLiveTrading); err != nil {
		if errors.Is(err, broker.ErrMissingToken) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		logger.ErrorWithErr(r.Context(), "Monitor pass failed", err)
		writeError(w, http.StatusInternalServerError, "monitor pass failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "monitored"})
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	email := r.URL.Query().Get("email")
	if symbol == "" || email == "" {
		writeError(w, http.StatusBadRequest, "symbol and email are required")
		return
	}
	isLive, _ := strconv.ParseBool(r.URL.Query().Get("live"))

	price, err := s.gateway.LatestPrice(r.Context(), symbol, email, isLive)
	if err != nil {
		if errors.Is(err, broker.ErrMissingToken) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "price": price})
}

func (s *server) handleClock(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	isLive, _ := strconv.ParseBool(r.URL.Query().Get("live"))

	open, err := s.gateway.MarketOpen(r.Context(), email, isLive)
	if err != nil {
		if errors.Is(err, broker.ErrMissingToken) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isOpen": open})
}

func (s *server) handleListTickers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tickers": s.universe.All()})
}

type tickerRequest struct {
	Ticker string `json:"ticker"`
}

func (s *server) handleAddTicker(w http.ResponseWriter, r *http.Request) {
	var req tickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if err := s.universe.Add(r.Context(), req.Ticker); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to persist ticker", err)
		writeError(w, http.StatusInternalServerError, "failed to persist ticker")
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"tickers": s.universe.All()})
}

func (s *server) handleRemoveTicker(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if err := s.universe.Remove(r.Context(), ticker); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to persist ticker removal", err)
		writeError(w, http.StatusInternalServerError, "failed to persist ticker removal")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tickers": s.universe.All()})
}

type tokenRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (s *server) handleStoreToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Token == "" {
		writeError(w, http.StatusBadRequest, "email and token are required")
		return
	}
	if err := s.tokens.UpsertUserToken(r.Context(), req.Email, req.Token); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to store token", err)
		writeError(w, http.StatusInternalServerError, "failed to store token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}
