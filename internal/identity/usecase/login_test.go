package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

func TestLogin(t *testing.T) {
	t.Run("unknown user gets the generic error", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())

		_, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "ghost", Password: "whatever"})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("wrong password gets the same generic error", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleTeacher, "right-pass-1")
		f := newFixture(t, repo)

		_, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "wrong-pass-1"})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)

		if len(f.tickets.login) != 0 {
			t.Fatal("no ticket may be issued for failed credentials")
		}
	})

	t.Run("role mismatch gets the same generic error", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleTeacher, "right-pass-1")
		f := newFixture(t, repo)

		_, err := f.uc.Login(context.Background(), LoginInput{
			SessionID: "s", Username: "bob", Password: "right-pass-1", Role: "Student",
		})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("valid credentials issue a ticket and mail the code", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleTeacher, "right-pass-1")
		f := newFixture(t, repo)

		out, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}

		ticket, ok := f.tickets.login["s"]
		if !ok {
			t.Fatal("expected a login ticket")
		}
		if ticket.UserID != 1 || len(ticket.Code) != 6 {
			t.Fatalf("unexpected ticket: %+v", ticket)
		}
		if len(f.mailer.sent) != 1 {
			t.Fatalf("expected 1 mail, got %d", len(f.mailer.sent))
		}
		if out.Email != "b**@example.com" {
			t.Fatalf("expected masked email, got %q", out.Email)
		}
	})

	t.Run("dual write persists the code when the store supports it", func(t *testing.T) {
		repo := newPersistRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleTeacher, "right-pass-1")
		f := newFixture(t, repo)

		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err != nil {
			t.Fatalf("login: %v", err)
		}

		if repo.setCalls != 1 {
			t.Fatalf("expected 1 persisted OTP write, got %d", repo.setCalls)
		}
		if repo.otpCode[1] != f.tickets.login["s"].Code {
			t.Fatal("persisted code and ticket code must match")
		}
	})

	t.Run("mail failure keeps the ticket for the next attempt", func(t *testing.T) {
		repo := newFakeRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleTeacher, "right-pass-1")
		f := newFixture(t, repo)
		f.mailer.sendErr = errSMTPDown

		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err == nil {
			t.Fatal("expected error on mail failure")
		}

		if len(f.tickets.login) != 1 {
			t.Fatal("login ticket should survive a mail failure")
		}

		// Retrying overwrites the undelivered code.
		old := f.tickets.login["s"].Code
		f.mailer.sendErr = nil
		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err != nil {
			t.Fatalf("retry login: %v", err)
		}
		if f.tickets.login["s"].Code == old {
			t.Fatal("expected a fresh code on retry")
		}
	})
}

func TestLoginVerify(t *testing.T) {
	login := func(t *testing.T, role entity.Role) (*fixture, *fakeRepo, string) {
		t.Helper()
		repo := newFakeRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", role, "right-pass-1")
		f := newFixture(t, repo)
		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err != nil {
			t.Fatalf("login: %v", err)
		}
		return f, repo, f.tickets.login["s"].Code
	}

	t.Run("role routes to its dashboard", func(t *testing.T) {
		tests := []struct {
			role entity.Role
			want string
		}{
			{entity.RoleAdmin, "/admin/dashboard"},
			{entity.RoleTeacher, "/teacher/dashboard"},
			{entity.RoleStudent, "/student/dashboard"},
		}

		for _, tc := range tests {
			t.Run(tc.role.String(), func(t *testing.T) {
				f, repo, code := login(t, tc.role)

				out, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: code})
				if err != nil {
					t.Fatalf("verify: %v", err)
				}
				if out.RedirectTo != tc.want {
					t.Fatalf("expected %q, got %q", tc.want, out.RedirectTo)
				}
				if out.AccessToken == "" || len(out.RefreshToken) != 64 {
					t.Fatalf("unexpected tokens: %+v", out)
				}
				if len(repo.refreshTokens) != 1 {
					t.Fatalf("expected 1 stored refresh token, got %d", len(repo.refreshTokens))
				}
				if len(f.tickets.login) != 0 {
					t.Fatal("ticket must be cleared after success")
				}
			})
		}
	})

	t.Run("no pending login", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())

		_, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: "123456"})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("wrong codes never burn the ticket", func(t *testing.T) {
		f, _, code := login(t, entity.RoleStudent)
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		// Far past the registration-style attempt cap.
		for i := 0; i < 5; i++ {
			_, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: wrong})
			assertBusinessCode(t, err, goerror.CodeUnauthorized)
		}

		if _, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: code}); err != nil {
			t.Fatalf("correct code after wrong attempts: %v", err)
		}
	})

	t.Run("expired one second past the window", func(t *testing.T) {
		f, _, code := login(t, entity.RoleStudent)

		f.clock.advance(301 * time.Second)

		_, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: code})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
		if len(f.tickets.login) != 0 {
			t.Fatal("expired ticket must be cleared")
		}
	})

	t.Run("persisted verification is preferred and cleared", func(t *testing.T) {
		repo := newPersistRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleStudent, "right-pass-1")
		f := newFixture(t, repo)

		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err != nil {
			t.Fatalf("login: %v", err)
		}
		code := f.tickets.login["s"].Code

		if _, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: code}); err != nil {
			t.Fatalf("verify: %v", err)
		}

		if _, ok := repo.otpCode[1]; ok {
			t.Fatal("persisted OTP must be cleared after success")
		}
	})

	t.Run("falls back to the ticket when the persisted check errors", func(t *testing.T) {
		repo := newPersistRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleStudent, "right-pass-1")
		f := newFixture(t, repo)

		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err != nil {
			t.Fatalf("login: %v", err)
		}
		repo.verifyErr = errSMTPDown

		if _, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{SessionID: "s", Code: f.tickets.login["s"].Code}); err != nil {
			t.Fatalf("verify via fallback: %v", err)
		}
	})
}
