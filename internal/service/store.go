package service

import (
	"context"

	"bracket-elo/internal/domain"
)

// PlayerStore is the per-namespace player statistics store.
type PlayerStore interface {
	EnsureNamespace(ctx context.Context, namespace string) error
	GetOrCreate(ctx context.Context, globalID int64, name, namespace string) (*domain.PlayerRecord, error)
	Find(ctx context.Context, globalID int64, namespace string) (*domain.PlayerRecord, error)
	Save(ctx context.Context, record *domain.PlayerRecord, namespace string) error
	List(ctx context.Context, namespace string) ([]domain.PlayerRecord, error)
	SaveRanks(ctx context.Context, namespace string, ranks []domain.RankAssignment) error
	IncrementTournamentsPlayed(ctx context.Context, globalID int64, name, namespace string) error
	IncrementTournamentsWon(ctx context.Context, globalID int64, namespace string) error
}

type LedgerStore interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) error
}

// EventProvider supplies event data from the upstream bracket service.
type EventProvider interface {
	GetEventMeta(ctx context.Context, eventID int64) (*domain.EventMeta, error)
	GetRoster(ctx context.Context, eventID int64) (domain.Roster, error)
	GetMatches(ctx context.Context, eventID int64) ([]domain.MatchResult, error)
	GetTournamentEvents(ctx context.Context, slug string) ([]domain.EventMeta, error)
}
