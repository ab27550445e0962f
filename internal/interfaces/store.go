package interfaces

import (
	"context"

	"quant-trader/internal/types"
)

// CandidateStore reads and replaces the persisted candidate lists.
type CandidateStore interface {
	Candidates(ctx context.Context) (long, short []types.Candidate, err error)
	ReplaceCandidates(ctx context.Context, long, short []types.Candidate) error
}

// SnapshotStore persists ticker-keyed technical and fundamental snapshots.
type SnapshotStore interface {
	UpsertTechnical(ctx context.Context, t types.TechnicalSnapshot) error
	Technicals(ctx context.Context) ([]types.TechnicalSnapshot, error)
	UpsertFundamental(ctx context.Context, f types.FundamentalSnapshot) error
	Fundamentals(ctx context.Context) ([]types.FundamentalSnapshot, error)
}

// TokenStore resolves and stores per-user brokerage tokens.
type TokenStore interface {
	UserToken(ctx context.Context, email string) (string, error)
	UpsertUserToken(ctx context.Context, email, token string) error
}

// MonitorRegistrar registers recurring position monitoring for a user.
type MonitorRegistrar interface {
	StartMonitoring(email string, isLive bool)
}
