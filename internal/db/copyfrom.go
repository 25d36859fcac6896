package db

import (
	"context"
)

type iteratorForInsertPlayLines struct {
	rows                 []InsertPlayLinesParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertPlayLines) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertPlayLines) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].PlayID,
		r.rows[0].LineNo,
		r.rows[0].Act,
		r.rows[0].Scene,
		r.rows[0].Speaker,
		r.rows[0].Text,
	}, nil
}

func (r iteratorForInsertPlayLines) Err() error {
	return nil
}

type InsertPlayLinesParams struct {
	PlayID  string `json:"play_id"`
	LineNo  int32  `json:"line_no"`
	Act     int32  `json:"act"`
	Scene   int32  `json:"scene"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (q *Queries) InsertPlayLines(ctx context.Context, arg []InsertPlayLinesParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"play_lines"}, []string{"play_id", "line_no", "act", "scene", "speaker", "text"}, &iteratorForInsertPlayLines{rows: arg})
}
