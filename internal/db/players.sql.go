package db

import (
	"context"
	"time"
)

const playerColumns = `namespace, global_id, name, player_rank, rating, games_played, wins, losses,
       win_loss_ratio, tournaments_played, tournaments_won, created_at, updated_at`

func scanPlayer(row interface{ Scan(dest ...any) error }, i *Player) error {
	return row.Scan(
		&i.Namespace,
		&i.GlobalID,
		&i.Name,
		&i.PlayerRank,
		&i.Rating,
		&i.GamesPlayed,
		&i.Wins,
		&i.Losses,
		&i.WinLossRatio,
		&i.TournamentsPlayed,
		&i.TournamentsWon,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

const insertPlayerIfMissing = `-- name: InsertPlayerIfMissing :exec
INSERT INTO players (namespace, global_id, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (namespace, global_id) DO NOTHING
`

type InsertPlayerIfMissingParams struct {
	Namespace string
	GlobalID  int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) InsertPlayerIfMissing(ctx context.Context, arg InsertPlayerIfMissingParams) error {
	_, err := q.db.ExecContext(ctx, insertPlayerIfMissing,
		arg.Namespace,
		arg.GlobalID,
		arg.Name,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getPlayer = `-- name: GetPlayer :one
SELECT ` + playerColumns + `
FROM players
WHERE namespace = ? AND global_id = ?
`

type GetPlayerParams struct {
	Namespace string
	GlobalID  int64
}

func (q *Queries) GetPlayer(ctx context.Context, arg GetPlayerParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, arg.Namespace, arg.GlobalID)
	var i Player
	err := scanPlayer(row, &i)
	return i, err
}

const updatePlayerStats = `-- name: UpdatePlayerStats :execrows
UPDATE players
SET rating = ?, games_played = ?, wins = ?, losses = ?, win_loss_ratio = ?, updated_at = ?
WHERE namespace = ? AND global_id = ?
`

type UpdatePlayerStatsParams struct {
	Rating       float64
	GamesPlayed  int64
	Wins         int64
	Losses       int64
	WinLossRatio float64
	UpdatedAt    time.Time
	Namespace    string
	GlobalID     int64
}

func (q *Queries) UpdatePlayerStats(ctx context.Context, arg UpdatePlayerStatsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePlayerStats,
		arg.Rating,
		arg.GamesPlayed,
		arg.Wins,
		arg.Losses,
		arg.WinLossRatio,
		arg.UpdatedAt,
		arg.Namespace,
		arg.GlobalID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updatePlayerRank = `-- name: UpdatePlayerRank :exec
UPDATE players
SET player_rank = ?
WHERE namespace = ? AND global_id = ?
`

type UpdatePlayerRankParams struct {
	PlayerRank int64
	Namespace  string
	GlobalID   int64
}

func (q *Queries) UpdatePlayerRank(ctx context.Context, arg UpdatePlayerRankParams) error {
	_, err := q.db.ExecContext(ctx, updatePlayerRank, arg.PlayerRank, arg.Namespace, arg.GlobalID)
	return err
}

const incrementTournamentsPlayed = `-- name: IncrementTournamentsPlayed :exec
INSERT INTO players (namespace, global_id, name, tournaments_played, created_at, updated_at)
VALUES (?, ?, ?, 1, ?, ?)
ON CONFLICT (namespace, global_id) DO UPDATE SET
    tournaments_played = tournaments_played + 1,
    updated_at = excluded.updated_at
`

type IncrementTournamentsPlayedParams struct {
	Namespace string
	GlobalID  int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) IncrementTournamentsPlayed(ctx context.Context, arg IncrementTournamentsPlayedParams) error {
	_, err := q.db.ExecContext(ctx, incrementTournamentsPlayed,
		arg.Namespace,
		arg.GlobalID,
		arg.Name,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const incrementTournamentsWon = `-- name: IncrementTournamentsWon :execrows
UPDATE players
SET tournaments_won = tournaments_won + 1, updated_at = ?
WHERE namespace = ? AND global_id = ?
`

type IncrementTournamentsWonParams struct {
	UpdatedAt time.Time
	Namespace string
	GlobalID  int64
}

func (q *Queries) IncrementTournamentsWon(ctx context.Context, arg IncrementTournamentsWonParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, incrementTournamentsWon, arg.UpdatedAt, arg.Namespace, arg.GlobalID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPlayersByNamespace = `-- name: ListPlayersByNamespace :many
SELECT ` + playerColumns + `
FROM players
WHERE namespace = ?
ORDER BY global_id
`

func (q *Queries) ListPlayersByNamespace(ctx context.Context, namespace string) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayersByNamespace, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := scanPlayer(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRankedPlayers = `-- name: ListRankedPlayers :many
SELECT ` + playerColumns + `
FROM players
WHERE namespace = ? AND player_rank > 0
ORDER BY player_rank, global_id
LIMIT ?
`

type ListRankedPlayersParams struct {
	Namespace string
	Limit     int64
}

func (q *Queries) ListRankedPlayers(ctx context.Context, arg ListRankedPlayersParams) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listRankedPlayers, arg.Namespace, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := scanPlayer(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
