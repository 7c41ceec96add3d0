package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bracket-elo/internal/api"
	"bracket-elo/internal/database"
	"bracket-elo/internal/db"
	"bracket-elo/internal/domain"
	"bracket-elo/internal/metrics"
	"bracket-elo/internal/middleware"
	"bracket-elo/internal/repository"
	"bracket-elo/internal/service"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type stubProvider struct{}

var stubStart = time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

func (stubProvider) GetEventMeta(_ context.Context, eventID int64) (*domain.EventMeta, error) {
	if eventID != 9001 {
		return nil, fmt.Errorf("event %d: %w", eventID, api.ErrNotFound)
	}
	return &domain.EventMeta{EventID: 9001, EventName: "Singles", TournamentName: "Friday Frays #12", GameName: "TEKKEN 8"}, nil
}

func (stubProvider) GetRoster(context.Context, int64) (domain.Roster, error) {
	return domain.Roster{
		101: {Name: "alpha", GlobalID: 1},
		102: {Name: "bravo", GlobalID: 2},
	}, nil
}

func (stubProvider) GetMatches(context.Context, int64) ([]domain.MatchResult, error) {
	return []domain.MatchResult{{
		SetID: "gf", PlayerOneID: 101, PlayerOneScore: 3, PlayerTwoID: 102, PlayerTwoScore: 1, CompletedAt: stubStart,
	}}, nil
}

func (stubProvider) GetTournamentEvents(_ context.Context, slug string) ([]domain.EventMeta, error) {
	if slug == "rate-limited" {
		return nil, api.ErrRateLimited
	}
	return []domain.EventMeta{{EventID: 9001, EventName: "Singles", TournamentName: "Friday Frays #12", GameName: "TEKKEN 8"}}, nil
}

func newTestServer(t *testing.T) string {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "elo.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger := zerolog.Nop()
	queries := db.New(sqlDB)
	players := repository.NewPlayerRepository(sqlDB, queries, logger)
	ledger := repository.NewLedgerRepository(sqlDB, queries, logger)
	events := repository.NewEventRepository(sqlDB, queries, logger)
	transactor := repository.NewTransactor(sqlDB, players, ledger, events, logger)

	ingestSvc := service.NewIngestService(stubProvider{}, transactor, metrics.New(prometheus.NewRegistry()), logger)
	leaderboardSvc := service.NewLeaderboardService(players, ledger, events, logger)

	path, handler := NewLedgerServer(ingestSvc, leaderboardSvc, logger).Handler()
	mux := http.NewServeMux()
	mux.Handle(path, middleware.RequestID(logger)(handler))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestLedgerServer_IngestAndRead(t *testing.T) {
	url := newTestServer(t)
	ctx := context.Background()

	ingest := connect.NewClient[wrapperspb.Int64Value, structpb.Struct](http.DefaultClient, url+IngestEventProcedure)
	resp, err := ingest.CallUnary(ctx, connect.NewRequest(wrapperspb.Int64(9001)))
	require.NoError(t, err)
	assert.Equal(t, "tekken8", resp.Msg.GetFields()["namespace"].GetStringValue())
	assert.Equal(t, float64(1), resp.Msg.GetFields()["winner_global_id"].GetNumberValue())
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	_, err = ingest.CallUnary(ctx, connect.NewRequest(wrapperspb.Int64(9001)))
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

	board := connect.NewClient[structpb.Struct, structpb.Struct](http.DefaultClient, url+GetLeaderboardProcedure)
	boardResp, err := board.CallUnary(ctx, connect.NewRequest(mustStruct(t, map[string]any{"namespace": "Tekken 8"})))
	require.NoError(t, err)
	players := boardResp.Msg.GetFields()["players"].GetListValue().GetValues()
	require.Len(t, players, 2)
	top := players[0].GetStructValue().GetFields()
	assert.Equal(t, "alpha", top["name"].GetStringValue())
	assert.Equal(t, 1532.0, top["rating"].GetNumberValue())
	assert.Equal(t, float64(1), top["rank"].GetNumberValue())

	player := connect.NewClient[structpb.Struct, structpb.Struct](http.DefaultClient, url+GetPlayerProcedure)
	playerResp, err := player.CallUnary(ctx, connect.NewRequest(mustStruct(t, map[string]any{"global_id": 2})))
	require.NoError(t, err)
	assert.Equal(t, 1468.0, playerResp.Msg.GetFields()["rating"].GetNumberValue())

	_, err = player.CallUnary(ctx, connect.NewRequest(mustStruct(t, map[string]any{"global_id": 404})))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	history := connect.NewClient[structpb.Struct, structpb.Struct](http.DefaultClient, url+GetPlayerHistoryProcedure)
	historyResp, err := history.CallUnary(ctx, connect.NewRequest(mustStruct(t, map[string]any{"global_id": 1})))
	require.NoError(t, err)
	entries := historyResp.Msg.GetFields()["entries"].GetListValue().GetValues()
	require.Len(t, entries, 1)
	assert.Equal(t, 32.0, entries[0].GetStructValue().GetFields()["player_one_delta"].GetNumberValue())

	namespaces := connect.NewClient[emptypb.Empty, structpb.Struct](http.DefaultClient, url+ListNamespacesProcedure)
	nsResp, err := namespaces.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	require.NoError(t, err)
	assert.Len(t, nsResp.Msg.GetFields()["namespaces"].GetListValue().GetValues(), 2)

	ingested := connect.NewClient[structpb.Struct, structpb.Struct](http.DefaultClient, url+ListIngestedEventsProcedure)
	ingestedResp, err := ingested.CallUnary(ctx, connect.NewRequest(mustStruct(t, nil)))
	require.NoError(t, err)
	assert.Len(t, ingestedResp.Msg.GetFields()["events"].GetListValue().GetValues(), 1)
}

func TestLedgerServer_ErrorCodes(t *testing.T) {
	url := newTestServer(t)
	ctx := context.Background()

	ingest := connect.NewClient[wrapperspb.Int64Value, structpb.Struct](http.DefaultClient, url+IngestEventProcedure)
	_, err := ingest.CallUnary(ctx, connect.NewRequest(wrapperspb.Int64(0)))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = ingest.CallUnary(ctx, connect.NewRequest(wrapperspb.Int64(77)))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	board := connect.NewClient[structpb.Struct, structpb.Struct](http.DefaultClient, url+GetLeaderboardProcedure)
	_, err = board.CallUnary(ctx, connect.NewRequest(mustStruct(t, map[string]any{"namespace": "Over All"})))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	events := connect.NewClient[wrapperspb.StringValue, structpb.Struct](http.DefaultClient, url+ListTournamentEventsProcedure)
	_, err = events.CallUnary(ctx, connect.NewRequest(wrapperspb.String("rate-limited")))
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	resp, err := events.CallUnary(ctx, connect.NewRequest(wrapperspb.String("friday-frays-12")))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.GetFields()["events"].GetListValue().GetValues(), 1)
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("wrapped: %w", domain.ErrPlayerNotFound), connect.CodeNotFound},
		{domain.ErrInvalidNamespace, connect.CodeInvalidArgument},
		{domain.ErrNoMatches, connect.CodeFailedPrecondition},
		{fmt.Errorf("set 7: %w", domain.ErrSelfMatch), connect.CodeFailedPrecondition},
		{domain.ErrEventAlreadyIngested, connect.CodeAlreadyExists},
		{api.ErrMissingToken, connect.CodeUnavailable},
		{context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{errors.New("disk I/O error"), connect.CodeInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toConnectError(tt.err).Code(), tt.err.Error())
	}
}
