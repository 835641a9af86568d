package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		SessionID:       "sess-1",
		Username:        "alice01",
		Email:           "alice@example.com",
		FirstName:       "Alice",
		LastName:        "Smith",
		Role:            "Student",
		Password:        "S3cure-pass!",
		PasswordConfirm: "S3cure-pass!",
	}
}

func TestRegister(t *testing.T) {
	t.Run("issues one ticket and mails the code", func(t *testing.T) {
		repo := newFakeRepo()
		f := newFixture(t, repo)

		out, err := f.uc.Register(context.Background(), validRegisterInput())
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		if f.tickets.regSaves != 1 {
			t.Fatalf("expected exactly 1 ticket save, got %d", f.tickets.regSaves)
		}

		ticket, ok := f.tickets.reg["sess-1"]
		if !ok {
			t.Fatal("expected a registration ticket for the session")
		}
		if len(ticket.Code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", ticket.Code)
		}
		if ticket.Attempts != 0 {
			t.Fatalf("expected zero attempts, got %d", ticket.Attempts)
		}
		if ticket.Profile.PasswordHash == "S3cure-pass!" {
			t.Fatal("ticket must not carry the plaintext password")
		}

		if len(f.mailer.sent) != 1 {
			t.Fatalf("expected 1 mail, got %d", len(f.mailer.sent))
		}
		if !strings.Contains(f.mailer.sent[0].TextBody, ticket.Code) {
			t.Fatal("mail body does not contain the code")
		}

		if out.Email != "a****@example.com" {
			t.Fatalf("expected masked email, got %q", out.Email)
		}

		if len(repo.users) != 0 {
			t.Fatal("no account should exist before verification")
		}
	})

	t.Run("resubmit replaces the previous ticket", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())

		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err != nil {
			t.Fatalf("first register: %v", err)
		}
		first := f.tickets.reg["sess-1"].Code

		f.clock.advance(10 * time.Second)
		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err != nil {
			t.Fatalf("second register: %v", err)
		}

		if len(f.tickets.reg) != 1 {
			t.Fatalf("expected a single ticket, got %d", len(f.tickets.reg))
		}
		if f.tickets.reg["sess-1"].Code == first {
			t.Fatal("expected a fresh code on resubmit")
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, 1, "taken", "alice@example.com", entity.RoleStudent, "pw-123456")
		f := newFixture(t, repo)

		_, err := f.uc.Register(context.Background(), validRegisterInput())
		assertBusinessCode(t, err, goerror.CodeConflict)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, 1, "alice01", "other@example.com", entity.RoleStudent, "pw-123456")
		f := newFixture(t, repo)

		_, err := f.uc.Register(context.Background(), validRegisterInput())
		assertBusinessCode(t, err, goerror.CodeConflict)
	})

	t.Run("password confirmation mismatch fails validation", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())

		in := validRegisterInput()
		in.PasswordConfirm = "different-pass"

		if _, err := f.uc.Register(context.Background(), in); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("mail failure leaves no ticket", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())
		f.mailer.sendErr = errSMTPDown

		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err == nil {
			t.Fatal("expected error on mail failure")
		}

		if len(f.tickets.reg) != 0 {
			t.Fatal("ticket must be deleted when the code cannot be delivered")
		}
	})
}

func TestRegisterVerify(t *testing.T) {
	register := func(t *testing.T) (*fixture, *fakeRepo) {
		t.Helper()
		repo := newFakeRepo()
		f := newFixture(t, repo)
		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err != nil {
			t.Fatalf("register: %v", err)
		}
		return f, repo
	}

	t.Run("correct code creates exactly one account and clears state", func(t *testing.T) {
		f, repo := register(t)
		code := f.tickets.reg["sess-1"].Code

		out, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: code})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if out.RedirectTo != "/login" {
			t.Fatalf("expected /login redirect, got %q", out.RedirectTo)
		}

		if len(repo.users) != 1 {
			t.Fatalf("expected exactly one account, got %d", len(repo.users))
		}
		if len(f.tickets.reg) != 0 {
			t.Fatal("ticket must be cleared after success")
		}
		if len(f.msg.published) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(f.msg.published))
		}

		// Replaying the same code must not create a second account.
		_, err = f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: code})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
		if len(repo.users) != 1 {
			t.Fatalf("replay created an account: %d users", len(repo.users))
		}
	})

	t.Run("no pending registration", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())

		_, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: "123456"})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("three wrong codes burn the ticket", func(t *testing.T) {
		f, repo := register(t)
		code := f.tickets.reg["sess-1"].Code
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		for i := 0; i < 3; i++ {
			if _, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: wrong}); err == nil {
				t.Fatalf("attempt %d: expected error", i+1)
			}
		}

		if len(f.tickets.reg) != 0 {
			t.Fatal("ticket must be cleared after the attempt limit")
		}

		// The correct code is now useless, the flow restarts from scratch.
		_, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: code})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
		if len(repo.users) != 0 {
			t.Fatal("no account may exist after a burned ticket")
		}
	})

	t.Run("expired one second past the window", func(t *testing.T) {
		f, _ := register(t)
		code := f.tickets.reg["sess-1"].Code

		f.clock.advance(301 * time.Second)

		_, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: code})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
		if len(f.tickets.reg) != 0 {
			t.Fatal("expired ticket must be cleared")
		}
	})

	t.Run("still valid one second before the window closes", func(t *testing.T) {
		f, repo := register(t)
		code := f.tickets.reg["sess-1"].Code

		f.clock.advance(299 * time.Second)

		if _, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: code}); err != nil {
			t.Fatalf("verify at 299s: %v", err)
		}
		if len(repo.users) != 1 {
			t.Fatalf("expected one account, got %d", len(repo.users))
		}
	})
}
