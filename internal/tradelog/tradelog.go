// Package tradelog writes an append-only JSON journal of every order the
// system places, one file per day. The journal is an audit trail, separate
// from operational logging.
package tradelog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a daily-rotated trade journal.
type Log struct {
	mu     sync.Mutex
	dir    string
	day    string
	file   *os.File
	logger *zap.Logger
}

// New creates a journal rooted at dir. The directory is created on first
// write, not here, so a read-only boot does not fail.
func New(dir string) *Log {
	if dir == "" {
		dir = os.Getenv("TRADER_LOG_DIR")
	}
	if dir == "" {
		dir = "logs"
	}
	return &Log{dir: dir}
}

// Order records a placed market order.
func (l *Log) Order(email, symbol, side string, qty, price float64, mode string) {
	if lg := l.loggerFor(time.Now()); lg != nil {
		lg.Info("order",
			zap.String("email", email),
			zap.String("symbol", symbol),
			zap.String("side", side),
			zap.Float64("qty", qty),
			zap.Float64("price", price),
			zap.String("mode", mode),
		)
	}
}

// Exit records a monitor-triggered position close.
func (l *Log) Exit(email, symbol, trigger string, qty, entry, price float64) {
	if lg := l.loggerFor(time.Now()); lg != nil {
		lg.Info("exit",
			zap.String("email", email),
			zap.String("symbol", symbol),
			zap.String("trigger", trigger),
			zap.Float64("qty", qty),
			zap.Float64("entry", entry),
			zap.Float64("price", price),
		)
	}
}

// Close flushes and closes the current day's file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

// loggerFor returns the zap logger for the given day, rolling the file when
// the day changes. Journal failures are swallowed: an unwritable audit file
// must never block trading.
func (l *Log) loggerFor(now time.Time) *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := now.Format("2006-01-02")
	if l.logger != nil && l.day == day {
		return l.logger
	}
	_ = l.closeLocked()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(l.dir, day+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), zap.InfoLevel)

	l.file = f
	l.day = day
	l.logger = zap.New(core)
	return l.logger
}

func (l *Log) closeLocked() error {
	if l.logger == nil {
		return nil
	}
	err := l.logger.Sync()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.logger = nil
	l.file = nil
	return err
}
