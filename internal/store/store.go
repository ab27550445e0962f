package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"quant-trader/internal/types"
)

// Store persists snapshots, candidate lists, user tokens and the ticker
// universe in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the HTTP surface can read while a cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS technical_data (
			ticker TEXT PRIMARY KEY,
			sma20  REAL,
			sma50  REAL,
			ema20  REAL,
			ema50  REAL,
			rsi14  REAL
		)`,
		`CREATE TABLE IF NOT EXISTS fundamental_data (
			ticker         TEXT PRIMARY KEY,
			pe_ratio       REAL,
			peg_ratio      REAL,
			dividend_yield REAL,
			payout_ratio   REAL,
			revenue        REAL,
			profit_margin  REAL,
			free_cash_flow REAL
		)`,
		`CREATE TABLE IF NOT EXISTS long_candidates (
			ticker         TEXT PRIMARY KEY,
			sma20          REAL,
			sma50          REAL,
			ema20          REAL,
			ema50          REAL,
			rsi14          REAL,
			pe_ratio       REAL,
			peg_ratio      REAL,
			dividend_yield REAL,
			payout_ratio   REAL,
			revenue        REAL,
			profit_margin  REAL,
			free_cash_flow REAL,
			sentiment      REAL
		)`,
		`CREATE TABLE IF NOT EXISTS short_candidates (
			ticker         TEXT PRIMARY KEY,
			sma20          REAL,
			sma50          REAL,
			ema20          REAL,
			ema50          REAL,
			rsi14          REAL,
			pe_ratio       REAL,
			peg_ratio      REAL,
			dividend_yield REAL,
			payout_ratio   REAL,
			revenue        REAL,
			profit_margin  REAL,
			free_cash_flow REAL,
			sentiment      REAL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			email           TEXT PRIMARY KEY,
			brokerage_token TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickers (
			ticker TEXT PRIMARY KEY
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// UpsertTechnical writes the ticker-keyed technical snapshot.
func (s *Store) UpsertTechnical(ctx context.Context, t types.TechnicalSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO technical_data
		(ticker, sma20, sma50, ema20, ema50, rsi14)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(ticker) DO UPDATE SET
			sma20=excluded.sma20, sma50=excluded.sma50,
			ema20=excluded.ema20, ema50=excluded.ema50,
			rsi14=excluded.rsi14`,
		t.Ticker, t.SMA20, t.SMA50, t.EMA20, t.EMA50, t.RSI14,
	)
	return err
}

// Technicals returns all stored technical snapshots.
func (s *Store) Technicals(ctx context.Context) ([]types.TechnicalSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, sma20, sma50, ema20, ema50, rsi14 FROM technical_data`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.TechnicalSnapshot
	for rows.Next() {
		var t types.TechnicalSnapshot
		if err := rows.Scan(&t.Ticker, &t.SMA20, &t.SMA50, &t.EMA20, &t.EMA50, &t.RSI14); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpsertFundamental writes the ticker-keyed fundamental snapshot.
func (s *Store) UpsertFundamental(ctx context.Context, f types.FundamentalSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO fundamental_data
		(ticker, pe_ratio, peg_ratio, dividend_yield, payout_ratio, revenue, profit_margin, free_cash_flow)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(ticker) DO UPDATE SET
			pe_ratio=excluded.pe_ratio, peg_ratio=excluded.peg_ratio,
			dividend_yield=excluded.dividend_yield, payout_ratio=excluded.payout_ratio,
			revenue=excluded.revenue, profit_margin=excluded.profit_margin,
			free_cash_flow=excluded.free_cash_flow`,
		f.Ticker, f.PERatio, f.PEGRatio, f.DividendYield, f.PayoutRatio,
		f.Revenue, f.ProfitMargin, f.FreeCashFlow,
	)
	return err
}

// Fundamentals returns all stored fundamental snapshots.
func (s *Store) Fundamentals(ctx context.Context) ([]types.FundamentalSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, pe_ratio, peg_ratio, dividend_yield, payout_ratio, revenue, profit_margin, free_cash_flow
		 FROM fundamental_data`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.FundamentalSnapshot
	for rows.Next() {
		var f types.FundamentalSnapshot
		if err := rows.Scan(&f.Ticker, &f.PERatio, &f.PEGRatio, &f.DividendYield,
			&f.PayoutRatio, &f.Revenue, &f.ProfitMargin, &f.FreeCashFlow); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplaceCandidates atomically swaps both candidate lists in a single
// transaction. Readers never observe a mix of the old and new sets.
func (s *Store) ReplaceCandidates(ctx context.Context, long, short []types.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"long_candidates", "short_candidates"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertCandidates(ctx, tx, "long_candidates", long); err != nil {
		return err
	}
	if err := insertCandidates(ctx, tx, "short_candidates", short); err != nil {
		return err
	}
	return tx.Commit()
}

func insertCandidates(ctx context.Context, tx *sql.Tx, table string, candidates []types.Candidate) error {
	for _, c := range candidates {
		_, err := tx.ExecContext(ctx, `INSERT INTO `+table+`
			(ticker, sma20, sma50, ema20, ema50, rsi14,
			 pe_ratio, peg_ratio, dividend_yield, payout_ratio,
			 revenue, profit_margin, free_cash_flow, sentiment)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			c.Ticker, c.SMA20, c.SMA50, c.EMA20, c.EMA50, c.RSI14,
			c.PERatio, c.PEGRatio, c.DividendYield, c.PayoutRatio,
			c.Revenue, c.ProfitMargin, c.FreeCashFlow, c.Sentiment,
		)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// Candidates returns the persisted long and short lists from the most
// recent completed analysis cycle.
func (s *Store) Candidates(ctx context.Context) (long, short []types.Candidate, err error) {
	long, err = s.queryCandidates(ctx, "long_candidates")
	if err != nil {
		return nil, nil, err
	}
	short, err = s.queryCandidates(ctx, "short_candidates")
	if err != nil {
		return nil, nil, err
	}
	return long, short, nil
}

func (s *Store) queryCandidates(ctx context.Context, table string) ([]types.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, sma20, sma50, ema20, ema50, rsi14,
		pe_ratio, peg_ratio, dividend_yield, payout_ratio,
		revenue, profit_margin, free_cash_flow, sentiment FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var c types.Candidate
		if err := rows.Scan(&c.Ticker, &c.SMA20, &c.SMA50, &c.EMA20, &c.EMA50, &c.RSI14,
			&c.PERatio, &c.PEGRatio, &c.DividendYield, &c.PayoutRatio,
			&c.Revenue, &c.ProfitMargin, &c.FreeCashFlow, &c.Sentiment); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertUserToken stores the brokerage bearer token for an email.
func (s *Store) UpsertUserToken(ctx context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (email, brokerage_token)
		VALUES (?,?)
		ON CONFLICT(email) DO UPDATE SET brokerage_token=excluded.brokerage_token`,
		email, token,
	)
	return err
}

// UserToken returns the stored brokerage token for an email, or "" when no
// token is on file.
func (s *Store) UserToken(ctx context.Context, email string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT brokerage_token FROM users WHERE email = ?`, email).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Tickers returns the persisted ticker universe.
func (s *Store) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker FROM tickers ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTickers replaces the persisted ticker universe. Last writer wins.
func (s *Store) SaveTickers(ctx context.Context, tickers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickers`); err != nil {
		return err
	}
	for _, t := range tickers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tickers (ticker) VALUES (?)`, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
