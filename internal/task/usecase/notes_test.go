package usecase

import (
	"strings"
	"testing"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
)

func TestNotesUpload(t *testing.T) {
	upload := func(body string) NotesUploadInput {
		return NotesUploadInput{
			Title:    "Lecture slides",
			Filename: "slides.pdf",
			Size:     int64(len(body)),
			Body:     strings.NewReader(body),
		}
	}

	t.Run("file lands in the notes bucket and a row is recorded", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		out, err := f.uc.NotesUpload(authCtx(teacherID, constant.RoleTeacher), upload("pdf-bytes"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(f.storage.objects) != 1 {
			t.Fatalf("expected 1 stored object, got %d", len(f.storage.objects))
		}
		obj := f.storage.objects[0]
		if obj.bucket != "taskgrid-notes" {
			t.Fatalf("unexpected bucket %q", obj.bucket)
		}
		if obj.key != out.FileKey || !strings.HasSuffix(obj.key, ".pdf") {
			t.Fatalf("unexpected key %q", obj.key)
		}
		if string(obj.data) != "pdf-bytes" {
			t.Fatalf("unexpected stored bytes %q", obj.data)
		}

		if len(f.repo.notes) != 1 {
			t.Fatalf("expected 1 note row, got %d", len(f.repo.notes))
		}
		note := f.repo.notes[0]
		if note.UploadedBy != teacherID || note.FileKey != out.FileKey {
			t.Fatalf("unexpected note row: %+v", note)
		}
	})

	t.Run("oversized file is rejected before storage", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		in := upload("x")
		in.Size = 2 << 20

		_, err := f.uc.NotesUpload(authCtx(teacherID, constant.RoleTeacher), in)
		assertBusinessCode(t, err, goerror.CodeInvalidInput)

		if len(f.storage.objects) != 0 {
			t.Fatalf("expected no stored objects, got %d", len(f.storage.objects))
		}
	})

	t.Run("failed note row removes the orphaned file", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)
		f.repo.noteErr = errStorageDown

		_, err := f.uc.NotesUpload(authCtx(teacherID, constant.RoleTeacher), upload("pdf-bytes"))
		if err == nil {
			t.Fatal("expected an error")
		}

		if len(f.storage.deleted) != 1 {
			t.Fatalf("expected 1 deleted object, got %d", len(f.storage.deleted))
		}
	})

	t.Run("students may not upload", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.NotesUpload(authCtx(studentID, constant.RoleStudent), upload("pdf-bytes"))
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})
}

func TestNotesList(t *testing.T) {
	t.Run("students can read what teachers shared", func(t *testing.T) {
		f := newFixture(t)
		seedPeople(f)

		_, err := f.uc.NotesUpload(authCtx(teacherID, constant.RoleTeacher), NotesUploadInput{
			Title:    "Lecture slides",
			Filename: "slides.pdf",
			Size:     9,
			Body:     strings.NewReader("pdf-bytes"),
		})
		if err != nil {
			t.Fatalf("seed note: %v", err)
		}

		out, err := f.uc.NotesList(authCtx(studentID, constant.RoleStudent), NotesListInput{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Total != 1 || len(out.Notes) != 1 {
			t.Fatalf("expected 1 note, got %+v", out)
		}
		if out.Notes[0].Title != "Lecture slides" {
			t.Fatalf("unexpected note title %q", out.Notes[0].Title)
		}
	})

	t.Run("unauthenticated caller is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.NotesList(authCtx(0, ""), NotesListInput{})
		assertBusinessCode(t, err, goerror.CodeForbidden)
	})
}
