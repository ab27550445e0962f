package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "universe:\n  static: [AAPL]\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Monitor.StopLossPct != 0.99 || cfg.Monitor.TakeProfitPct != 1.03 {
		t.Errorf("default exit band = %v/%v, want 0.99/1.03", cfg.Monitor.StopLossPct, cfg.Monitor.TakeProfitPct)
	}
	if cfg.Sentiment.LongMin != 15 || cfg.Sentiment.ShortMax != 20 {
		t.Errorf("default sentiment thresholds = %v/%v, want 15/20", cfg.Sentiment.LongMin, cfg.Sentiment.ShortMax)
	}
	if cfg.Scheduler.MonitorCron != "*/10 * * * *" {
		t.Errorf("monitor cron = %q, want every 10 minutes", cfg.Scheduler.MonitorCron)
	}
}

func TestMonitorCronFollowsInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, "monitor:\n  interval_minutes: 5\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduler.MonitorCron != "*/5 * * * *" {
		t.Errorf("monitor cron = %q, want */5", cfg.Scheduler.MonitorCron)
	}
}

func TestValidateRejectsInvertedRSIThresholds(t *testing.T) {
	_, err := Load(writeConfig(t, "screening:\n  rsi_long_min: 20\n  rsi_short_max: 80\n"))
	if err == nil {
		t.Fatal("expected validation error for inverted RSI thresholds")
	}
}

func TestValidateRejectsBadExitBand(t *testing.T) {
	_, err := Load(writeConfig(t, "monitor:\n  stop_loss_pct: 1.5\n"))
	if err == nil {
		t.Fatal("expected validation error for stop loss above 1")
	}
}

func TestRemoteRequiresBaseURL(t *testing.T) {
	_, err := Load(writeConfig(t, "scheduler:\n  remote:\n    enabled: true\n    base_url: \"\"\n"))
	if err == nil {
		t.Fatal("expected validation error for enabled remote without base url")
	}
}
