package db

import (
	"context"
)

const deletePlayLines = `-- name: DeletePlayLines :exec
DELETE FROM play_lines
WHERE play_id = $1
`

func (q *Queries) DeletePlayLines(ctx context.Context, playID string) error {
	_, err := q.db.Exec(ctx, deletePlayLines, playID)
	return err
}

const getPlayLines = `-- name: GetPlayLines :many
SELECT play_id, line_no, act, scene, speaker, text
FROM play_lines
WHERE play_id = $1
ORDER BY line_no
`

func (q *Queries) GetPlayLines(ctx context.Context, playID string) ([]PlayLine, error) {
	rows, err := q.db.Query(ctx, getPlayLines, playID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayLine
	for rows.Next() {
		var i PlayLine
		if err := rows.Scan(
			&i.PlayID,
			&i.LineNo,
			&i.Act,
			&i.Scene,
			&i.Speaker,
			&i.Text,
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

const deleteCharacterMetadata = `-- name: DeleteCharacterMetadata :exec
DELETE FROM character_metadata
WHERE play_id = $1
`

func (q *Queries) DeleteCharacterMetadata(ctx context.Context, playID string) error {
	_, err := q.db.Exec(ctx, deleteCharacterMetadata, playID)
	return err
}

const upsertCharacterMetadata = `-- name: UpsertCharacterMetadata :exec
INSERT INTO character_metadata (play_id, sort_order, character_name, description, image, notes)
SELECT $1::text, u.sort_order, u.character_name, u.description, u.image, u.notes
FROM unnest(
    $2::int[],
    $3::text[],
    $4::text[],
    $5::text[],
    $6::text[]
) AS u(sort_order, character_name, description, image, notes)
ON CONFLICT (play_id, character_name) DO UPDATE
SET sort_order = EXCLUDED.sort_order,
    description = EXCLUDED.description,
    image = EXCLUDED.image,
    notes = EXCLUDED.notes
`

type UpsertCharacterMetadataParams struct {
	PlayID         string   `json:"play_id"`
	SortOrders     []int32  `json:"sort_orders"`
	CharacterNames []string `json:"character_names"`
	Descriptions   []string `json:"descriptions"`
	Images         []string `json:"images"`
	Notes          []string `json:"notes"`
}

func (q *Queries) UpsertCharacterMetadata(ctx context.Context, arg UpsertCharacterMetadataParams) error {
	_, err := q.db.Exec(ctx, upsertCharacterMetadata,
		arg.PlayID,
		arg.SortOrders,
		arg.CharacterNames,
		arg.Descriptions,
		arg.Images,
		arg.Notes,
	)
	return err
}

const getCharacterMetadata = `-- name: GetCharacterMetadata :many
SELECT play_id, sort_order, character_name, description, image, notes
FROM character_metadata
WHERE play_id = $1
ORDER BY sort_order
`

func (q *Queries) GetCharacterMetadata(ctx context.Context, playID string) ([]CharacterMetadatum, error) {
	rows, err := q.db.Query(ctx, getCharacterMetadata, playID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CharacterMetadatum
	for rows.Next() {
		var i CharacterMetadatum
		if err := rows.Scan(
			&i.PlayID,
			&i.SortOrder,
			&i.CharacterName,
			&i.Description,
			&i.Image,
			&i.Notes,
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
