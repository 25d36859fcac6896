package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OFFIS-RIT/dramaturgy/internal/util"
	"github.com/OFFIS-RIT/dramaturgy/pkg/logger"
	"github.com/OFFIS-RIT/dramaturgy/pkg/metadata"
	"github.com/OFFIS-RIT/dramaturgy/pkg/play"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// ErrPlayNotFound is returned for an unknown play id.
	ErrPlayNotFound = errors.New("play not found")
	// ErrPlayNotReady is returned while a play is still being imported.
	ErrPlayNotReady = errors.New("play not ready")
	// ErrLineOutOfRange is returned for an act or scene that does not fit
	// the line table.
	ErrLineOutOfRange = errors.New("line number out of range")
)

// TxDB is a connection that can open transactions, such as *pgxpool.Pool.
type TxDB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Catalog reads and writes whole plays.
type Catalog struct {
	conn TxDB
}

func NewCatalog(conn TxDB) *Catalog {
	return &Catalog{conn: conn}
}

// Queries returns the plain queries over the catalog connection.
func (c *Catalog) Queries() *Queries {
	return New(c.conn)
}

// ListPlays lists every play, newest first.
func (c *Catalog) ListPlays(ctx context.Context) ([]Play, error) {
	return New(c.conn).ListPlays(ctx)
}

// GetPlay returns the catalog row of a play.
func (c *Catalog) GetPlay(ctx context.Context, id string) (Play, error) {
	row, err := New(c.conn).GetPlay(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Play{}, ErrPlayNotFound
	}
	return row, err
}

// CreatePlay adds a pending play.
func (c *Catalog) CreatePlay(ctx context.Context, arg CreatePlayParams) (Play, error) {
	if arg.Status == "" {
		arg.Status = PlayStatusPending
	}
	return New(c.conn).CreatePlay(ctx, arg)
}

// Play loads a ready play with all its lines.
func (c *Catalog) Play(ctx context.Context, id string) (*play.Play, error) {
	row, err := c.GetPlay(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != PlayStatusReady {
		return nil, fmt.Errorf("%w: status %s", ErrPlayNotReady, row.Status)
	}

	lines, err := New(c.conn).GetPlayLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPlay(row, lines), nil
}

// Metadata loads the character metadata of a play. A play without metadata
// yields an empty feed.
func (c *Catalog) Metadata(ctx context.Context, id string) (*metadata.Feed, error) {
	rows, err := New(c.conn).GetCharacterMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToFeed(rows), nil
}

// ReplaceContent swaps the lines and metadata of a play and marks it ready,
// all in one transaction.
func (c *Catalog) ReplaceContent(ctx context.Context, id string, p *play.Play, feed *metadata.Feed) error {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	qtx := New(c.conn).WithTx(tx)

	if err := qtx.DeletePlayLines(ctx, id); err != nil {
		return fmt.Errorf("failed to delete old lines: %w", err)
	}
	params, err := LinesParams(id, p.Lines)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		if _, err := qtx.InsertPlayLines(ctx, params); err != nil {
			return fmt.Errorf("failed to insert lines: %w", err)
		}
	}

	if err := qtx.DeleteCharacterMetadata(ctx, id); err != nil {
		return fmt.Errorf("failed to delete old metadata: %w", err)
	}
	if feed.Len() > 0 {
		if err := qtx.UpsertCharacterMetadata(ctx, MetadataParams(id, feed)); err != nil {
			return fmt.Errorf("failed to store metadata: %w", err)
		}
	}

	if err := qtx.FinishPlayImport(ctx, FinishPlayImportParams{
		ID:        id,
		Title:     util.SanitizePostgresText(p.Title),
		Author:    util.SanitizePostgresText(p.Author),
		LineCount: int32(len(params)),
	}); err != nil {
		return fmt.Errorf("failed to finish import: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.Debug("[DB] Stored play", "play_id", id, "lines", len(params), "metadata", feed.Len())
	return nil
}

// SetStatus records the import status of a play. A non-nil cause is stored
// as the error message.
func (c *Catalog) SetStatus(ctx context.Context, id, status string, cause error) error {
	msg := pgtype.Text{}
	if cause != nil {
		msg = pgtype.Text{String: cause.Error(), Valid: true}
	}
	return New(c.conn).UpdatePlayStatus(ctx, UpdatePlayStatusParams{
		ID:           id,
		Status:       status,
		ErrorMessage: msg,
	})
}

// Delete removes a play with its lines and metadata. It reports whether the
// play existed.
func (c *Catalog) Delete(ctx context.Context, id string) (bool, error) {
	n, err := New(c.conn).DeletePlay(ctx, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ToPlay converts stored rows to a play.
func ToPlay(row Play, lines []PlayLine) *play.Play {
	p := &play.Play{
		ID:     row.ID,
		Title:  row.Title,
		Author: row.Author,
		Lines:  make([]play.DialogueLine, 0, len(lines)),
	}
	for _, l := range lines {
		p.Lines = append(p.Lines, play.DialogueLine{
			Speaker: l.Speaker,
			Act:     int(l.Act),
			Scene:   int(l.Scene),
			Text:    l.Text,
			Row:     int(l.LineNo),
		})
	}
	return p
}

// LinesParams prepares lines for InsertPlayLines. Rows are renumbered when
// the source left them unset, repeated them or numbered them past the int32
// range. Text is cleaned of bytes Postgres rejects.
func LinesParams(playID string, lines []play.DialogueLine) ([]InsertPlayLinesParams, error) {
	if len(lines) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d lines", ErrLineOutOfRange, len(lines))
	}
	params := make([]InsertPlayLinesParams, 0, len(lines))
	seen := make(map[int]bool, len(lines))
	renumber := false
	for _, l := range lines {
		if l.Row <= 0 || l.Row > math.MaxInt32 || seen[l.Row] {
			renumber = true
			break
		}
		seen[l.Row] = true
	}
	for i, l := range lines {
		if !fitsInt32(l.Act) || !fitsInt32(l.Scene) {
			return nil, fmt.Errorf("%w: act %d scene %d", ErrLineOutOfRange, l.Act, l.Scene)
		}
		row := l.Row
		if renumber {
			row = i + 1
		}
		params = append(params, InsertPlayLinesParams{
			PlayID:  playID,
			LineNo:  int32(row),
			Act:     int32(l.Act),
			Scene:   int32(l.Scene),
			Speaker: util.SanitizePostgresText(l.Speaker),
			Text:    util.SanitizePostgresText(l.Text),
		})
	}
	return params, nil
}

func fitsInt32(n int) bool {
	return n >= 0 && n <= math.MaxInt32
}

// MetadataParams prepares a feed for UpsertCharacterMetadata. When a
// character is listed twice the first entry wins. Values are cleaned of
// bytes Postgres rejects.
func MetadataParams(playID string, feed *metadata.Feed) UpsertCharacterMetadataParams {
	params := UpsertCharacterMetadataParams{PlayID: playID}
	seen := make(map[string]bool)
	for _, e := range feed.Entries() {
		name := util.SanitizePostgresText(strings.TrimSpace(e.Character))
		if seen[name] {
			continue
		}
		seen[name] = true
		params.SortOrders = append(params.SortOrders, int32(len(params.CharacterNames)))
		params.CharacterNames = append(params.CharacterNames, name)
		params.Descriptions = append(params.Descriptions, util.SanitizePostgresText(e.Description))
		params.Images = append(params.Images, util.SanitizePostgresText(e.Image))
		params.Notes = append(params.Notes, util.SanitizePostgresText(e.Notes))
	}
	return params
}

// ToFeed converts stored metadata rows to a feed.
func ToFeed(rows []CharacterMetadatum) *metadata.Feed {
	entries := make([]metadata.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, metadata.Entry{
			Character:   r.CharacterName,
			Description: r.Description,
			Image:       r.Image,
			Notes:       r.Notes,
		})
	}
	return metadata.NewFeed(entries...)
}
