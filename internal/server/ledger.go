package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bracket-elo/internal/api"
	"bracket-elo/internal/domain"
	"bracket-elo/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const EloLedgerPath = "/elo.v1.EloLedger/"

const (
	GetLeaderboardProcedure       = EloLedgerPath + "GetLeaderboard"
	GetPlayerProcedure            = EloLedgerPath + "GetPlayer"
	GetPlayerHistoryProcedure     = EloLedgerPath + "GetPlayerHistory"
	ListNamespacesProcedure       = EloLedgerPath + "ListNamespaces"
	ListIngestedEventsProcedure   = EloLedgerPath + "ListIngestedEvents"
	ListTournamentEventsProcedure = EloLedgerPath + "ListTournamentEvents"
	IngestEventProcedure          = EloLedgerPath + "IngestEvent"
)

// LedgerServer exposes ingestion and the read side over connect. Messages are
// protobuf well-known types so plain JSON clients can call it too.
type LedgerServer struct {
	ingestSvc      *service.IngestService
	leaderboardSvc *service.LeaderboardService
	logger         zerolog.Logger
}

func NewLedgerServer(ingestSvc *service.IngestService, leaderboardSvc *service.LeaderboardService, logger zerolog.Logger) *LedgerServer {
	return &LedgerServer{ingestSvc: ingestSvc, leaderboardSvc: leaderboardSvc, logger: logger}
}

// Handler returns the path prefix to mount and the handler serving it.
func (s *LedgerServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(GetLeaderboardProcedure, connect.NewUnaryHandler(GetLeaderboardProcedure, s.GetLeaderboard, opts...))
	mux.Handle(GetPlayerProcedure, connect.NewUnaryHandler(GetPlayerProcedure, s.GetPlayer, opts...))
	mux.Handle(GetPlayerHistoryProcedure, connect.NewUnaryHandler(GetPlayerHistoryProcedure, s.GetPlayerHistory, opts...))
	mux.Handle(ListNamespacesProcedure, connect.NewUnaryHandler(ListNamespacesProcedure, s.ListNamespaces, opts...))
	mux.Handle(ListIngestedEventsProcedure, connect.NewUnaryHandler(ListIngestedEventsProcedure, s.ListIngestedEvents, opts...))
	mux.Handle(ListTournamentEventsProcedure, connect.NewUnaryHandler(ListTournamentEventsProcedure, s.ListTournamentEvents, opts...))
	mux.Handle(IngestEventProcedure, connect.NewUnaryHandler(IngestEventProcedure, s.IngestEvent, opts...))
	return EloLedgerPath, mux
}

func (s *LedgerServer) GetLeaderboard(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	namespace := stringField(req.Msg, "namespace")
	players, err := s.leaderboardSvc.GetLeaderboard(ctx, namespace, intField(req.Msg, "limit"))
	if err != nil {
		return nil, toConnectError(err)
	}

	rows := make([]any, len(players))
	for i, p := range players {
		rows[i] = playerFields(p)
	}
	return structResponse(map[string]any{
		"namespace": namespace,
		"players":   rows,
	})
}

func (s *LedgerServer) GetPlayer(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	player, err := s.leaderboardSvc.GetPlayer(ctx, int64Field(req.Msg, "global_id"), stringField(req.Msg, "namespace"))
	if err != nil {
		return nil, toConnectError(err)
	}
	return structResponse(playerFields(*player))
}

func (s *LedgerServer) GetPlayerHistory(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	entries, err := s.leaderboardSvc.GetPlayerHistory(ctx, int64Field(req.Msg, "global_id"), intField(req.Msg, "limit"))
	if err != nil {
		return nil, toConnectError(err)
	}

	rows := make([]any, len(entries))
	for i, e := range entries {
		rows[i] = ledgerFields(e)
	}
	return structResponse(map[string]any{"entries": rows})
}

func (s *LedgerServer) ListNamespaces(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	namespaces, err := s.leaderboardSvc.ListNamespaces(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	names := make([]any, len(namespaces))
	for i, ns := range namespaces {
		names[i] = ns
	}
	return structResponse(map[string]any{"namespaces": names})
}

func (s *LedgerServer) ListIngestedEvents(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	events, err := s.leaderboardSvc.ListIngestedEvents(ctx, intField(req.Msg, "limit"))
	if err != nil {
		return nil, toConnectError(err)
	}

	rows := make([]any, len(events))
	for i, e := range events {
		rows[i] = ingestedFields(e)
	}
	return structResponse(map[string]any{"events": rows})
}

func (s *LedgerServer) ListTournamentEvents(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	if req.Msg.GetValue() == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tournament slug is required"))
	}

	events, err := s.ingestSvc.ListTournamentEvents(ctx, req.Msg.GetValue())
	if err != nil {
		return nil, toConnectError(err)
	}

	rows := make([]any, len(events))
	for i, e := range events {
		rows[i] = map[string]any{
			"event_id":        e.EventID,
			"event_name":      e.EventName,
			"tournament_name": e.TournamentName,
			"game_name":       e.GameName,
		}
	}
	return structResponse(map[string]any{"events": rows})
}

func (s *LedgerServer) IngestEvent(ctx context.Context, req *connect.Request[wrapperspb.Int64Value]) (*connect.Response[structpb.Struct], error) {
	eventID := req.Msg.GetValue()
	if eventID <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("event id must be positive"))
	}

	zerolog.Ctx(ctx).Info().Int64("event_id", eventID).Msg("ingest requested")

	event, err := s.ingestSvc.IngestEvent(ctx, eventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return structResponse(ingestedFields(*event))
}

func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, api.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, domain.ErrInvalidNamespace), errors.Is(err, domain.ErrReservedNamespace):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, domain.ErrNoMatches),
		errors.Is(err, domain.ErrUnknownParticipant),
		errors.Is(err, domain.ErrSelfMatch),
		errors.Is(err, api.ErrMissingUser),
		errors.Is(err, api.ErrMalformedSet):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, domain.ErrEventAlreadyIngested):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, api.ErrRateLimited):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, api.ErrMissingToken):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func structResponse(fields map[string]any) (*connect.Response[structpb.Struct], error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func stringField(msg *structpb.Struct, key string) string {
	return msg.GetFields()[key].GetStringValue()
}

func intField(msg *structpb.Struct, key string) int {
	return int(msg.GetFields()[key].GetNumberValue())
}

func int64Field(msg *structpb.Struct, key string) int64 {
	return int64(msg.GetFields()[key].GetNumberValue())
}

func playerFields(p domain.PlayerRecord) map[string]any {
	return map[string]any{
		"global_id":          p.GlobalID,
		"name":               p.Name,
		"rank":               p.Rank,
		"rating":             p.Rating,
		"games_played":       p.GamesPlayed,
		"wins":               p.Wins,
		"losses":             p.Losses,
		"win_loss_ratio":     p.WinLossRatio,
		"tournaments_played": p.TournamentsPlayed,
		"tournaments_won":    p.TournamentsWon,
	}
}

func ledgerFields(e domain.LedgerEntry) map[string]any {
	return map[string]any{
		"id":                   e.ID,
		"event_id":             e.EventID,
		"set_id":               e.SetID,
		"player_one_global_id": e.PlayerOneGlobalID,
		"player_one_name":      e.PlayerOneName,
		"player_one_rating":    e.PlayerOneRating,
		"player_one_score":     e.PlayerOneScore,
		"player_one_delta":     e.PlayerOneDelta,
		"player_two_global_id": e.PlayerTwoGlobalID,
		"player_two_name":      e.PlayerTwoName,
		"player_two_rating":    e.PlayerTwoRating,
		"player_two_score":     e.PlayerTwoScore,
		"player_two_delta":     e.PlayerTwoDelta,
		"tournament_name":      e.TournamentName,
		"game_name":            e.GameName,
		"set_time":             e.SetTime,
	}
}

func ingestedFields(e domain.IngestedEvent) map[string]any {
	return map[string]any{
		"event_id":         e.EventID,
		"event_name":       e.EventName,
		"tournament_name":  e.TournamentName,
		"game_name":        e.GameName,
		"namespace":        e.Namespace,
		"match_count":      e.MatchCount,
		"forfeit_count":    e.ForfeitCount,
		"winner_global_id": e.WinnerGlobalID,
		"ingested_at":      e.IngestedAt.UTC().Format(time.RFC3339),
	}
}
