package db

import (
	"context"
	"time"
)

const insertNamespace = `-- name: InsertNamespace :exec
INSERT INTO namespaces (name, created_at)
VALUES (?, ?)
ON CONFLICT (name) DO NOTHING
`

type InsertNamespaceParams struct {
	Name      string
	CreatedAt time.Time
}

func (q *Queries) InsertNamespace(ctx context.Context, arg InsertNamespaceParams) error {
	_, err := q.db.ExecContext(ctx, insertNamespace, arg.Name, arg.CreatedAt)
	return err
}

const listNamespaces = `-- name: ListNamespaces :many
SELECT name, created_at
FROM namespaces
ORDER BY name
`

func (q *Queries) ListNamespaces(ctx context.Context) ([]Namespace, error) {
	rows, err := q.db.QueryContext(ctx, listNamespaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Namespace
	for rows.Next() {
		var i Namespace
		if err := rows.Scan(&i.Name, &i.CreatedAt); err != nil {
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
