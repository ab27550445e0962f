// Package scheduler drives the recurring work: the in-process cron tier for
// position monitoring and daily refresh, and an optional remote scheduling
// service that survives process restarts.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"quant-trader/internal/logger"
)

// MonitorRunner runs one monitoring pass for a user.
type MonitorRunner interface {
	Run(ctx context.Context, email string, isLive bool) error
}

// Cron is the in-process scheduling tier. Monitor registrations are deduped
// per user and mode, so repeated trade batches never stack cron entries.
type Cron struct {
	cron    *cron.Cron
	runner  MonitorRunner
	spec    string
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewCron creates the scheduler with the monitor cron spec (standard
// five-field syntax).
func NewCron(runner MonitorRunner, monitorSpec string) *Cron {
	return &Cron{
		cron:    cron.New(),
		runner:  runner,
		spec:    monitorSpec,
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins running registered jobs.
func (c *Cron) Start() {
	c.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (c *Cron) Stop() {
	<-c.cron.Stop().Done()
}

// StartMonitoring runs an immediate monitoring pass for the user and
// registers the recurring one. Registering the same user and mode twice is a
// no-op.
func (c *Cron) StartMonitoring(email string, isLive bool) {
	ctx := context.Background()

	go func() {
		if err := c.runner.Run(ctx, email, isLive); err != nil {
			logger.Warn(ctx, "Immediate monitor pass failed", "email", email, "error", err)
		}
	}()

	key := fmt.Sprintf("%s|live=%t", email, isLive)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}

	id, err := c.cron.AddFunc(c.spec, func() {
		if err := c.runner.Run(context.Background(), email, isLive); err != nil {
			logger.Warn(context.Background(), "Scheduled monitor pass failed", "email", email, "error", err)
		}
	})
	if err != nil {
		logger.Error(ctx, "Failed to register monitor schedule", "email", email, "spec", c.spec, "error", err)
		return
	}
	c.entries[key] = id
	logger.Info(ctx, "Monitor schedule registered", "email", email, "live", isLive, "spec", c.spec)
}

// RegisterDailyRefresh schedules the analysis refresh.
func (c *Cron) RegisterDailyRefresh(spec string, fn func(ctx context.Context) error) error {
	_, err := c.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := fn(ctx); err != nil {
			logger.Error(ctx, "Scheduled refresh failed", "spec", spec, "error", err)
		}
	})
	return err
}
