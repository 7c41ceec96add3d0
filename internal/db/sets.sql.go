package db

import (
	"context"
	"time"
)

const setColumns = `id, event_id, set_id,
       player_one_global_id, player_one_name, player_one_rating, player_one_score, player_one_delta,
       player_two_global_id, player_two_name, player_two_rating, player_two_score, player_two_delta,
       tournament_name, game_name, set_time, created_at`

func scanSet(row interface{ Scan(dest ...any) error }, i *Set) error {
	return row.Scan(
		&i.ID,
		&i.EventID,
		&i.SetID,
		&i.PlayerOneGlobalID,
		&i.PlayerOneName,
		&i.PlayerOneRating,
		&i.PlayerOneScore,
		&i.PlayerOneDelta,
		&i.PlayerTwoGlobalID,
		&i.PlayerTwoName,
		&i.PlayerTwoRating,
		&i.PlayerTwoScore,
		&i.PlayerTwoDelta,
		&i.TournamentName,
		&i.GameName,
		&i.SetTime,
		&i.CreatedAt,
	)
}

const insertSet = `-- name: InsertSet :exec
INSERT INTO sets (
    id, event_id, set_id,
    player_one_global_id, player_one_name, player_one_rating, player_one_score, player_one_delta,
    player_two_global_id, player_two_name, player_two_rating, player_two_score, player_two_delta,
    tournament_name, game_name, set_time, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertSetParams struct {
	ID                string
	EventID           int64
	SetID             string
	PlayerOneGlobalID int64
	PlayerOneName     string
	PlayerOneRating   float64
	PlayerOneScore    int64
	PlayerOneDelta    float64
	PlayerTwoGlobalID int64
	PlayerTwoName     string
	PlayerTwoRating   float64
	PlayerTwoScore    int64
	PlayerTwoDelta    float64
	TournamentName    string
	GameName          string
	SetTime           string
	CreatedAt         time.Time
}

func (q *Queries) InsertSet(ctx context.Context, arg InsertSetParams) error {
	_, err := q.db.ExecContext(ctx, insertSet,
		arg.ID,
		arg.EventID,
		arg.SetID,
		arg.PlayerOneGlobalID,
		arg.PlayerOneName,
		arg.PlayerOneRating,
		arg.PlayerOneScore,
		arg.PlayerOneDelta,
		arg.PlayerTwoGlobalID,
		arg.PlayerTwoName,
		arg.PlayerTwoRating,
		arg.PlayerTwoScore,
		arg.PlayerTwoDelta,
		arg.TournamentName,
		arg.GameName,
		arg.SetTime,
		arg.CreatedAt,
	)
	return err
}

// rowid preserves append order, which is match order within an event
const listSetsByEvent = `-- name: ListSetsByEvent :many
SELECT ` + setColumns + `
FROM sets
WHERE event_id = ?
ORDER BY rowid
`

func (q *Queries) ListSetsByEvent(ctx context.Context, eventID int64) ([]Set, error) {
	rows, err := q.db.QueryContext(ctx, listSetsByEvent, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSets(rows)
}

const listSetsByPlayer = `-- name: ListSetsByPlayer :many
SELECT ` + setColumns + `
FROM sets
WHERE player_one_global_id = ? OR player_two_global_id = ?
ORDER BY rowid DESC
LIMIT ?
`

type ListSetsByPlayerParams struct {
	GlobalID int64
	Limit    int64
}

func (q *Queries) ListSetsByPlayer(ctx context.Context, arg ListSetsByPlayerParams) ([]Set, error) {
	rows, err := q.db.QueryContext(ctx, listSetsByPlayer, arg.GlobalID, arg.GlobalID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSets(rows)
}

func collectSets(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}) ([]Set, error) {
	var items []Set
	for rows.Next() {
		var i Set
		if err := scanSet(rows, &i); err != nil {
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
