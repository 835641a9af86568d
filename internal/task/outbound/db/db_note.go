package db

import (
	"context"

	"github.com/taskgrid/taskgrid/internal/task/entity"
)

func (s *DB) CreateNote(ctx context.Context, in entity.Note) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNote")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notes (id, title, file_key, size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)`,
		in.ID, in.Title, in.FileKey, in.Size, in.UploadedBy,
	)
	return s.mapError(err)
}

func (s *DB) GetNoteList(ctx context.Context, limit, offset int32) (_ []entity.Note, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetNoteList")
	defer func() { s.endSpan(span, err) }()

	var total int64
	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM notes`).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, title, file_key, size, uploaded_by, created_at
		FROM notes ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		var n entity.Note
		if err = rows.Scan(&n.ID, &n.Title, &n.FileKey, &n.Size, &n.UploadedBy, &n.CreatedAt); err != nil {
			return nil, 0, s.mapError(err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return notes, total, nil
}
