package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/storage"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

type NotesUploadInput struct {
	Title    string `validate:"required,min=3,max=200"`
	Filename string `validate:"required,max=255"`
	Size     int64  `validate:"required,min=1"`
	Body     io.Reader
}

type NotesUploadOutput struct {
	ID      int64
	FileKey string
}

// NotesUpload streams the file into object storage, then records a note
// row pointing at the stored key.
func (s *Usecase) NotesUpload(ctx context.Context, in NotesUploadInput) (*NotesUploadOutput, error) {
	ctx, span := s.startSpan(ctx, "NotesUpload")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, constant.PermissionNotes, constant.ActionWrite)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Body == nil {
		return nil, goerror.NewInvalidFormat("file body is required")
	}

	maxSize := s.cfg.GetInt64("modules.task.note_max_size_bytes")
	if maxSize > 0 && in.Size > maxSize {
		return nil, goerror.NewBusiness("file is too large", goerror.CodeInvalidInput)
	}

	id := s.uid.Generate()
	key := fmt.Sprintf("notes/%d%s", id, path.Ext(in.Filename))

	bucket := s.cfg.GetString("modules.task.notes_bucket")
	if _, err := s.storage.PutObject(ctx, bucket, key, in.Body, storage.PutOptions{Size: in.Size}); err != nil {
		slog.ErrorContext(ctx, "failed to store note file", "bucket", bucket, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	note := entity.Note{
		ID:         id,
		Title:      in.Title,
		FileKey:    key,
		Size:       in.Size,
		UploadedBy: clm.UserID,
	}

	if err := s.repoDB.CreateNote(ctx, note); err != nil {
		slog.ErrorContext(ctx, "failed to repo create note", "error", err)

		if derr := s.storage.DeleteObject(ctx, bucket, key); derr != nil {
			slog.WarnContext(ctx, "failed to delete orphaned note file", "key", key, "error", derr)
		}

		return nil, goerror.NewServer(err)
	}

	return &NotesUploadOutput{ID: id, FileKey: key}, nil
}

type NotesListInput struct {
	Page  int32 `validate:"omitempty,min=1"`
	Limit int32 `validate:"omitempty,min=1,max=100"`
}

type NoteItem struct {
	ID         int64
	Title      string
	FileKey    string
	Size       int64
	UploadedBy int64
	CreatedAt  time.Time
}

type NotesListOutput struct {
	Notes []NoteItem
	Total int64
}

func (s *Usecase) NotesList(ctx context.Context, in NotesListInput) (*NotesListOutput, error) {
	ctx, span := s.startSpan(ctx, "NotesList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermissionNotes, constant.ActionRead); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 20
	}

	notes, total, err := s.repoDB.GetNoteList(ctx, in.Limit, (in.Page-1)*in.Limit)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get note list", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &NotesListOutput{Total: total, Notes: make([]NoteItem, 0, len(notes))}
	for _, n := range notes {
		out.Notes = append(out.Notes, NoteItem{
			ID:         n.ID,
			Title:      n.Title,
			FileKey:    n.FileKey,
			Size:       n.Size,
			UploadedBy: n.UploadedBy,
			CreatedAt:  n.CreatedAt,
		})
	}

	return out, nil
}
