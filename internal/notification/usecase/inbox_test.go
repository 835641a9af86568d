package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/notification/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

func TestListInbox(t *testing.T) {
	t.Run("returns stored items with defaults applied", func(t *testing.T) {
		f := newFixture(t)
		f.repo.items = []entity.NotificationItem{
			{ID: 1000, Kind: entity.KindTaskAssigned, Title: "New task assigned", CreatedAt: time.Now()},
		}

		items, err := f.uc.ListInbox(authCtx(20), ListInboxInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 || items[0].ID != 1000 {
			t.Fatalf("unexpected items: %+v", items)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ListInbox(authCtx(20), ListInboxInput{Status: "archived"})
		assertBusinessCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ListInbox(context.Background(), ListInboxInput{})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestUnreadCount(t *testing.T) {
	f := newFixture(t)
	f.repo.unread = 7

	count, err := f.uc.UnreadCount(authCtx(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 unread, got %d", count)
	}
}

func TestMarkInboxRead(t *testing.T) {
	t.Run("marks an owned notification", func(t *testing.T) {
		f := newFixture(t)

		if err := f.uc.MarkInboxRead(authCtx(20), MarkInboxReadInput{ID: 1000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.repo.markedRead) != 1 || f.repo.markedRead[0] != 1000 {
			t.Fatalf("expected mark call for 1000, got %v", f.repo.markedRead)
		}
	})

	t.Run("not found when nothing was updated", func(t *testing.T) {
		f := newFixture(t)
		f.repo.markOK = false

		err := f.uc.MarkInboxRead(authCtx(20), MarkInboxReadInput{ID: 9999})
		assertBusinessCode(t, err, goerror.CodeNotFound)
	})
}

func TestDeleteInbox(t *testing.T) {
	t.Run("soft deletes an owned notification", func(t *testing.T) {
		f := newFixture(t)

		if err := f.uc.DeleteInbox(authCtx(20), DeleteInboxInput{ID: 1000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.repo.deleted) != 1 {
			t.Fatalf("expected delete call, got %v", f.repo.deleted)
		}
	})

	t.Run("not found when nothing was deleted", func(t *testing.T) {
		f := newFixture(t)
		f.repo.deleteOK = false

		err := f.uc.DeleteInbox(authCtx(20), DeleteInboxInput{ID: 9999})
		assertBusinessCode(t, err, goerror.CodeNotFound)
	})
}
