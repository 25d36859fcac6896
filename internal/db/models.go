package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	PlayStatusPending   = "pending"
	PlayStatusImporting = "importing"
	PlayStatusReady     = "ready"
	PlayStatusFailed    = "failed"
)

type Play struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Author           string             `json:"author"`
	Status           string             `json:"status"`
	Source           string             `json:"source"`
	Location         string             `json:"location"`
	MetadataLocation string             `json:"metadata_location"`
	Format           string             `json:"format"`
	LineCount        int32              `json:"line_count"`
	ErrorMessage     pgtype.Text        `json:"error_message"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type PlayLine struct {
	PlayID  string `json:"play_id"`
	LineNo  int32  `json:"line_no"`
	Act     int32  `json:"act"`
	Scene   int32  `json:"scene"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type CharacterMetadatum struct {
	PlayID        string `json:"play_id"`
	SortOrder     int32  `json:"sort_order"`
	CharacterName string `json:"character_name"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	Notes         string `json:"notes"`
}
