package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Universe struct {
		Static []string `yaml:"static"`
	} `yaml:"universe"`
	Screening struct {
		RSILongMin  float64 `yaml:"rsi_long_min"`
		RSIShortMax float64 `yaml:"rsi_short_max"`
		MaxPERatio  float64 `yaml:"max_pe_ratio"`
	} `yaml:"screening"`
	Sentiment struct {
		MaxArticles     int     `yaml:"max_articles"`
		LongMin         float64 `yaml:"long_min"`
		ShortMax        float64 `yaml:"short_max"`
		FetchTimeoutSec int     `yaml:"fetch_timeout_sec"`
	} `yaml:"sentiment"`
	Monitor struct {
		StopLossPct     float64 `yaml:"stop_loss_pct"`
		TakeProfitPct   float64 `yaml:"take_profit_pct"`
		IntervalMinutes int     `yaml:"interval_minutes"`
	} `yaml:"monitor"`
	Broker struct {
		MinOrderSpacingMs int `yaml:"min_order_spacing_ms"`
		TimeoutSec        int `yaml:"timeout_sec"`
	} `yaml:"broker"`
	Scheduler struct {
		DailyCron   string `yaml:"daily_cron"`
		MonitorCron string `yaml:"monitor_cron"`
		Remote      struct {
			Enabled     bool   `yaml:"enabled"`
			BaseURL     string `yaml:"base_url"`
			Destination string `yaml:"destination"`
			TokenEnv    string `yaml:"token_env"`
			MonitorCron string `yaml:"monitor_cron"`
			RefreshCron string `yaml:"refresh_cron"`
		} `yaml:"remote"`
	} `yaml:"scheduler"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if c.Screening.RSILongMin <= c.Screening.RSIShortMax {
		return fmt.Errorf("screening.rsi_long_min (%.1f) must exceed rsi_short_max (%.1f)",
			c.Screening.RSILongMin, c.Screening.RSIShortMax)
	}
	if c.Monitor.StopLossPct <= 0 || c.Monitor.StopLossPct >= 1 {
		return fmt.Errorf("monitor.stop_loss_pct must be in (0,1), got %.3f", c.Monitor.StopLossPct)
	}
	if c.Monitor.TakeProfitPct <= 1 {
		return fmt.Errorf("monitor.take_profit_pct must exceed 1, got %.3f", c.Monitor.TakeProfitPct)
	}
	if c.Scheduler.Remote.Enabled && c.Scheduler.Remote.BaseURL == "" {
		return fmt.Errorf("scheduler.remote.base_url required when remote scheduling is enabled")
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/quanttrader.db"
	}
	if c.Screening.RSILongMin == 0 {
		c.Screening.RSILongMin = 70
	}
	if c.Screening.RSIShortMax == 0 {
		c.Screening.RSIShortMax = 30
	}
	if c.Screening.MaxPERatio == 0 {
		c.Screening.MaxPERatio = 30
	}
	if c.Sentiment.MaxArticles == 0 {
		c.Sentiment.MaxArticles = 5
	}
	if c.Sentiment.LongMin == 0 {
		c.Sentiment.LongMin = 15
	}
	if c.Sentiment.ShortMax == 0 {
		c.Sentiment.ShortMax = 20
	}
	if c.Sentiment.FetchTimeoutSec == 0 {
		c.Sentiment.FetchTimeoutSec = 30
	}
	if c.Monitor.StopLossPct == 0 {
		c.Monitor.StopLossPct = 0.99
	}
	if c.Monitor.TakeProfitPct == 0 {
		c.Monitor.TakeProfitPct = 1.03
	}
	if c.Monitor.IntervalMinutes == 0 {
		c.Monitor.IntervalMinutes = 10
	}
	if c.Broker.MinOrderSpacingMs == 0 {
		c.Broker.MinOrderSpacingMs = 1000
	}
	if c.Broker.TimeoutSec == 0 {
		c.Broker.TimeoutSec = 30
	}
	if c.Scheduler.DailyCron == "" {
		c.Scheduler.DailyCron = "0 0 * * *"
	}
	if c.Scheduler.MonitorCron == "" {
		c.Scheduler.MonitorCron = fmt.Sprintf("*/%d * * * *", c.Monitor.IntervalMinutes)
	}
	if c.Scheduler.Remote.MonitorCron == "" {
		c.Scheduler.Remote.MonitorCron = "0 * * * *"
	}
	if c.Scheduler.Remote.RefreshCron == "" {
		c.Scheduler.Remote.RefreshCron = "0 0 * * *"
	}
	if c.Scheduler.Remote.TokenEnv == "" {
		c.Scheduler.Remote.TokenEnv = "SCHEDULER_TOKEN"
	}
}
