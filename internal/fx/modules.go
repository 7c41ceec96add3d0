package fx

import (
	"database/sql"

	"bracket-elo/internal/api"
	"bracket-elo/internal/config"
	"bracket-elo/internal/database"
	"bracket-elo/internal/db"
	"bracket-elo/internal/logger"
	"bracket-elo/internal/metrics"
	"bracket-elo/internal/repository"
	"bracket-elo/internal/server"
	"bracket-elo/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// Core wires storage, the start.gg client and the services. The CLI uses it
// directly; the server adds the RPC layer on top.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewLedgerRepository),
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewTransactor),
	// api client
	fx.Provide(fx.Annotate(api.NewStartGGClient, fx.As(new(service.EventProvider)))),
	// metrics
	fx.Provide(metrics.NewRegistry),
	fx.Provide(metrics.New),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewLeaderboardService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(server.NewLedgerServer),
)
