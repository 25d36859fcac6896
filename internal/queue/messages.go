package queue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sources a play file can be imported from.
const (
	SourceS3  = "s3"
	SourceWeb = "web"
)

// ImportPlayMsg asks the worker to (re)import a play. MetadataLocation
// optionally names a character metadata CSV in the same source.
type ImportPlayMsg struct {
	PlayID           string `json:"play_id"`
	Source           string `json:"source"`
	Location         string `json:"location"`
	Format           string `json:"format,omitempty"`
	MetadataLocation string `json:"metadata_location,omitempty"`
}

// DeletePlayMsg asks the worker to remove the stored files of a play.
type DeletePlayMsg struct {
	PlayID string `json:"play_id"`
}

var errInvalidMessage = errors.New("invalid queue message")

func decodeImport(msg string) (*ImportPlayMsg, error) {
	data := new(ImportPlayMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidMessage, err)
	}
	if data.PlayID == "" || data.Location == "" {
		return nil, fmt.Errorf("%w: play_id and location are required", errInvalidMessage)
	}
	if data.Source == "" {
		data.Source = SourceS3
	}
	return data, nil
}

// PublishImport queues an import of a play.
func PublishImport(ch Channel, msg ImportPlayMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, ImportQueue, body)
}

// PublishDelete queues the removal of the stored files of a play.
func PublishDelete(ch Channel, playID string) error {
	body, err := json.Marshal(DeletePlayMsg{PlayID: playID})
	if err != nil {
		return err
	}
	return PublishFIFO(ch, DeleteQueue, body)
}
