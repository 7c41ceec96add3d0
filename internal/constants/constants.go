package constants

import "time"

const (
	ExternalAPITimeout = 15 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	IngestTimeout      = 5 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

// start.gg caps query complexity, which bounds how many nodes fit in one page.
const (
	EntrantsPerPage    = 499
	SetsPerPage        = 70
	APIPageConcurrency = 4
	CompletedSetState  = 3
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 500
	DefaultHistoryLimit     = 25
)
