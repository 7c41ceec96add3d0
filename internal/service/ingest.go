package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bracket-elo/internal/constants"
	"bracket-elo/internal/domain"
	"bracket-elo/internal/metrics"
	"bracket-elo/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// IngestService pulls a completed event from the provider and applies it to
// the store in a single transaction.
type IngestService struct {
	provider   EventProvider
	transactor *repository.Transactor
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	// one event at a time; rating updates depend on prior state
	mu sync.Mutex
}

func NewIngestService(provider EventProvider, transactor *repository.Transactor, m *metrics.Metrics, logger zerolog.Logger) *IngestService {
	return &IngestService{
		provider:   provider,
		transactor: transactor,
		metrics:    m,
		logger:     logger,
	}
}

type eventData struct {
	meta    *domain.EventMeta
	roster  domain.Roster
	matches []domain.MatchResult
}

func (s *IngestService) fetchEvent(ctx context.Context, eventID int64) (*eventData, error) {
	data := &eventData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		meta, err := s.provider.GetEventMeta(gctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to fetch event %d: %w", eventID, err)
		}
		data.meta = meta
		return nil
	})

	g.Go(func() error {
		roster, err := s.provider.GetRoster(gctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to fetch roster for event %d: %w", eventID, err)
		}
		data.roster = roster
		return nil
	})

	g.Go(func() error {
		matches, err := s.provider.GetMatches(gctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to fetch sets for event %d: %w", eventID, err)
		}
		data.matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *IngestService) IngestEvent(ctx context.Context, eventID int64) (*domain.IngestedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.IngestTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	log := s.logger.With().Int64("event_id", eventID).Logger()
	log.Info().Msg("ingesting event")

	event, err := s.ingest(ctx, eventID, log)
	switch {
	case errors.Is(err, domain.ErrEventAlreadyIngested):
		s.metrics.EventIngested(metrics.ResultDuplicate, time.Since(start))
		log.Warn().Msg("event already ingested, skipping")
		return nil, err
	case err != nil:
		s.metrics.EventIngested(metrics.ResultFailure, time.Since(start))
		log.Error().Err(err).Msg("failed to ingest event")
		return nil, err
	}

	s.metrics.EventIngested(metrics.ResultSuccess, time.Since(start))
	log.Info().
		Str("namespace", event.Namespace).
		Int("matches", event.MatchCount).
		Int("forfeits", event.ForfeitCount).
		Dur("took", time.Since(start)).
		Msg("event ingested")
	return event, nil
}

func (s *IngestService) ingest(ctx context.Context, eventID int64, log zerolog.Logger) (*domain.IngestedEvent, error) {
	data, err := s.fetchEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	namespace, err := repository.NormalizeNamespace(data.meta.GameName)
	if err != nil {
		return nil, err
	}
	if len(data.matches) == 0 {
		return nil, fmt.Errorf("event %d: %w", eventID, domain.ErrNoMatches)
	}

	log.Debug().
		Str("namespace", namespace).
		Int("entrants", len(data.roster)).
		Int("sets", len(data.matches)).
		Msg("event data fetched")

	var event *domain.IngestedEvent
	err = s.transactor.WithinTx(ctx, func(repos repository.Repositories) error {
		ingested, err := repos.Events.IsIngested(ctx, eventID)
		if err != nil {
			return err
		}
		if ingested {
			return fmt.Errorf("event %d: %w", eventID, domain.ErrEventAlreadyIngested)
		}

		processor := NewLedgerProcessor(repos.Players, repos.Ledger, s.metrics, s.logger)
		summary, err := processor.ProcessEvent(ctx, EventInput{
			EventID:        eventID,
			TournamentName: data.meta.TournamentName,
			GameName:       data.meta.GameName,
			GameNamespace:  namespace,
			Roster:         data.roster,
			Matches:        data.matches,
		})
		if err != nil {
			return err
		}

		ranker := NewRanker(repos.Players, s.logger)
		for _, ns := range []string{domain.OverallNamespace, namespace} {
			if err := ranker.IncrementTournamentCount(ctx, data.roster, ns); err != nil {
				return err
			}
			if _, err := ranker.RecomputeRanks(ctx, ns); err != nil {
				return err
			}
		}

		event = &domain.IngestedEvent{
			EventID:        eventID,
			EventName:      data.meta.EventName,
			TournamentName: data.meta.TournamentName,
			GameName:       data.meta.GameName,
			Namespace:      namespace,
			MatchCount:     summary.Processed,
			ForfeitCount:   summary.Forfeits,
			WinnerGlobalID: summary.WinnerGlobalID,
			IngestedAt:     time.Now(),
		}
		return repos.Events.MarkIngested(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListTournamentEvents resolves a tournament slug to its events so callers
// can pick an event id to ingest.
func (s *IngestService) ListTournamentEvents(ctx context.Context, slug string) ([]domain.EventMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	events, err := s.provider.GetTournamentEvents(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to list tournament events")
		return nil, fmt.Errorf("failed to list events for %s: %w", slug, err)
	}

	s.logger.Info().Str("slug", slug).Int("count", len(events)).Msg("tournament events listed")
	return events, nil
}
