package tradelog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOrderWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	l.Order("user@example.com", "AAPL", "buy", 2, 150.25, "paper")
	if err := l.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("journal line is not JSON: %v\n%s", err, line)
	}
	if entry["symbol"] != "AAPL" || entry["side"] != "buy" || entry["qty"] != 2.0 {
		t.Fatalf("unexpected journal entry: %v", entry)
	}
}

func TestExitAppendsToSameDayFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	l.Order("user@example.com", "TSLA", "buy", 1, 250, "live")
	l.Exit("user@example.com", "TSLA", "stop_loss", 1, 250, 247.5)
	l.Close()

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 journal lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "stop_loss") {
		t.Fatalf("exit line missing trigger: %s", lines[1])
	}
}
