package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPlay = `-- name: CreatePlay :one
INSERT INTO plays (id, title, status, source, location, metadata_location, format)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, title, author, status, source, location, metadata_location, format, line_count, error_message, created_at, updated_at
`

type CreatePlayParams struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Status           string `json:"status"`
	Source           string `json:"source"`
	Location         string `json:"location"`
	MetadataLocation string `json:"metadata_location"`
	Format           string `json:"format"`
}

func (q *Queries) CreatePlay(ctx context.Context, arg CreatePlayParams) (Play, error) {
	row := q.db.QueryRow(ctx, createPlay,
		arg.ID,
		arg.Title,
		arg.Status,
		arg.Source,
		arg.Location,
		arg.MetadataLocation,
		arg.Format,
	)
	var i Play
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Author,
		&i.Status,
		&i.Source,
		&i.Location,
		&i.MetadataLocation,
		&i.Format,
		&i.LineCount,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPlay = `-- name: GetPlay :one
SELECT id, title, author, status, source, location, metadata_location, format, line_count, error_message, created_at, updated_at
FROM plays
WHERE id = $1
`

func (q *Queries) GetPlay(ctx context.Context, id string) (Play, error) {
	row := q.db.QueryRow(ctx, getPlay, id)
	var i Play
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Author,
		&i.Status,
		&i.Source,
		&i.Location,
		&i.MetadataLocation,
		&i.Format,
		&i.LineCount,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPlays = `-- name: ListPlays :many
SELECT id, title, author, status, source, location, metadata_location, format, line_count, error_message, created_at, updated_at
FROM plays
ORDER BY created_at DESC, id
`

func (q *Queries) ListPlays(ctx context.Context) ([]Play, error) {
	rows, err := q.db.Query(ctx, listPlays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Play
	for rows.Next() {
		var i Play
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Author,
			&i.Status,
			&i.Source,
			&i.Location,
			&i.MetadataLocation,
			&i.Format,
			&i.LineCount,
			&i.ErrorMessage,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updatePlayStatus = `-- name: UpdatePlayStatus :exec
UPDATE plays
SET status = $2, error_message = $3, updated_at = now()
WHERE id = $1
`

type UpdatePlayStatusParams struct {
	ID           string      `json:"id"`
	Status       string      `json:"status"`
	ErrorMessage pgtype.Text `json:"error_message"`
}

func (q *Queries) UpdatePlayStatus(ctx context.Context, arg UpdatePlayStatusParams) error {
	_, err := q.db.Exec(ctx, updatePlayStatus, arg.ID, arg.Status, arg.ErrorMessage)
	return err
}

const finishPlayImport = `-- name: FinishPlayImport :exec
UPDATE plays
SET title = $2, author = $3, line_count = $4, status = 'ready', error_message = NULL, updated_at = now()
WHERE id = $1
`

type FinishPlayImportParams struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	LineCount int32  `json:"line_count"`
}

func (q *Queries) FinishPlayImport(ctx context.Context, arg FinishPlayImportParams) error {
	_, err := q.db.Exec(ctx, finishPlayImport,
		arg.ID,
		arg.Title,
		arg.Author,
		arg.LineCount,
	)
	return err
}

const deletePlay = `-- name: DeletePlay :execrows
DELETE FROM plays
WHERE id = $1
`

func (q *Queries) DeletePlay(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deletePlay, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getStaleImports = `-- name: GetStaleImports :many
SELECT id, title, author, status, source, location, metadata_location, format, line_count, error_message, created_at, updated_at
FROM plays
WHERE status IN ('pending', 'importing')
  AND updated_at < now() - ($1::bigint * interval '1 millisecond')
ORDER BY updated_at
`

func (q *Queries) GetStaleImports(ctx context.Context, olderThanMs int64) ([]Play, error) {
	rows, err := q.db.Query(ctx, getStaleImports, olderThanMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Play
	for rows.Next() {
		var i Play
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Author,
			&i.Status,
			&i.Source,
			&i.Location,
			&i.MetadataLocation,
			&i.Format,
			&i.LineCount,
			&i.ErrorMessage,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
