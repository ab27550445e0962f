package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"quant-trader/internal/api"
	"quant-trader/internal/logger"
)

// Remote manages schedules on an external push-based scheduler. Unlike the
// in-process tier, remote schedules persist across restarts: the service
// calls back into the trigger endpoints on its own clock.
type Remote struct {
	client      *api.Client
	monitorDest string
	refreshDest string
	monitorCron string
	refreshCron string
}

// RemoteConfig configures the remote scheduling client.
type RemoteConfig struct {
	BaseURL     string
	Destination string // public base URL of this service
	TokenEnv    string // env var holding the scheduler API token
	MonitorCron string
	RefreshCron string
}

// NewRemote creates a remote scheduler client, or nil when no token is
// configured so callers can treat remote scheduling as disabled.
func NewRemote(cfg RemoteConfig) *Remote {
	token := os.Getenv(cfg.TokenEnv)
	if token == "" || cfg.BaseURL == "" || cfg.Destination == "" {
		return nil
	}
	base := strings.TrimRight(cfg.Destination, "/")
	return &Remote{
		client: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(15*time.Second),
			api.WithHeader("Authorization", "Bearer "+token),
			api.WithLogging(true),
		),
		monitorDest: base + "/api/v1/monitor",
		refreshDest: base + "/api/v1/update",
		monitorCron: cfg.MonitorCron,
		refreshCron: cfg.RefreshCron,
	}
}

type remoteSchedule struct {
	ID          string `json:"scheduleId"`
	Destination string `json:"destination"`
	Cron        string `json:"cron"`
	Body        string `json:"body"`
}

type monitorPayload struct {
	Email         string `json:"email"`
	IsLiveTrading bool   `json:"isLiveTrading"`
}

// EnsureMonitorSchedule creates a recurring remote schedule that posts the
// user's monitor payload back to this service. An existing schedule for the
// same destination and payload is left alone.
func (r *Remote) EnsureMonitorSchedule(ctx context.Context, email string, isLive bool) error {
	requestID := uuid.NewString()

	existing, err := r.listSchedules(ctx)
	if err != nil {
		return fmt.Errorf("list remote schedules: %w", err)
	}
	payload := monitorPayload{Email: email, IsLiveTrading: isLive}
	marker := fmt.Sprintf("%q:%q", "email", email)
	for _, s := range existing {
		if s.Destination == r.monitorDest && strings.Contains(s.Body, marker) {
			logger.Debug(ctx, "Remote monitor schedule already exists",
				"email", email, "scheduleId", s.ID, "requestId", requestID)
			return nil
		}
	}

	id, err := r.createSchedule(ctx, r.monitorDest, r.monitorCron, payload)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Remote monitor schedule created",
		"email", email, "scheduleId", id, "cron", r.monitorCron, "requestId", requestID)
	return nil
}

// EnsureDailyRefresh creates the remote schedule that triggers the daily
// analysis cycle. Called once at boot; an existing schedule is left alone.
func (r *Remote) EnsureDailyRefresh(ctx context.Context) error {
	existing, err := r.listSchedules(ctx)
	if err != nil {
		return fmt.Errorf("list remote schedules: %w", err)
	}
	for _, s := range existing {
		if s.Destination == r.refreshDest {
			logger.Debug(ctx, "Remote refresh schedule already exists", "scheduleId", s.ID)
			return nil
		}
	}

	id, err := r.createSchedule(ctx, r.refreshDest, r.refreshCron, struct{}{})
	if err != nil {
		return err
	}
	logger.Info(ctx, "Remote refresh schedule created", "scheduleId", id, "cron", r.refreshCron)
	return nil
}

func (r *Remote) createSchedule(ctx context.Context, destination, cronSpec string, body any) (string, error) {
	req := api.NewRequest("POST", "/v2/schedules/"+url.PathEscape(destination)).
		WithContext(ctx).
		WithBody(body).
		WithHeader("Upstash-Cron", cronSpec)

	resp, err := r.client.DoWithRetry(req, nil)
	if err != nil {
		return "", fmt.Errorf("create remote schedule: %w", err)
	}

	var created struct {
		ScheduleID string `json:"scheduleId"`
	}
	if err := resp.ParseJSON(&created); err != nil {
		return "", err
	}
	return created.ScheduleID, nil
}

func (r *Remote) listSchedules(ctx context.Context) ([]remoteSchedule, error) {
	resp, err := r.client.GET(ctx, "/v2/schedules")
	if err != nil {
		return nil, err
	}
	var schedules []remoteSchedule
	if err := resp.ParseJSON(&schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}
