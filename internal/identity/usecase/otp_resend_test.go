package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

func TestResendOTP(t *testing.T) {
	t.Run("no verification in progress", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())

		_, err := f.uc.ResendOTP(context.Background(), ResendOTPInput{SessionID: "s"})
		assertBusinessCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("rejected inside the cooldown window", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())
		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err != nil {
			t.Fatalf("register: %v", err)
		}
		code := f.tickets.reg["sess-1"].Code

		f.clock.advance(29 * time.Second)

		_, err := f.uc.ResendOTP(context.Background(), ResendOTPInput{SessionID: "sess-1"})
		assertBusinessCode(t, err, goerror.CodeTooManyRequest)

		if f.tickets.reg["sess-1"].Code != code {
			t.Fatal("a rejected resend must not touch the ticket")
		}
		if len(f.mailer.sent) != 1 {
			t.Fatalf("expected no extra mail, got %d", len(f.mailer.sent))
		}
	})

	t.Run("succeeds after the cooldown and invalidates the old code", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())
		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err != nil {
			t.Fatalf("register: %v", err)
		}
		old := f.tickets.reg["sess-1"].Code

		f.clock.advance(30 * time.Second)

		if _, err := f.uc.ResendOTP(context.Background(), ResendOTPInput{SessionID: "sess-1"}); err != nil {
			t.Fatalf("resend: %v", err)
		}

		fresh := f.tickets.reg["sess-1"].Code
		if fresh == old {
			t.Fatal("expected a fresh code")
		}
		if len(f.mailer.sent) != 2 {
			t.Fatalf("expected 2 mails, got %d", len(f.mailer.sent))
		}

		// The superseded code may not verify anymore.
		if old != fresh {
			_, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: old})
			assertBusinessCode(t, err, goerror.CodeUnauthorized)
		}

		if _, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: fresh}); err != nil {
			t.Fatalf("verify fresh code: %v", err)
		}
	})

	t.Run("resend resets the attempt count", func(t *testing.T) {
		f := newFixture(t, newFakeRepo())
		if _, err := f.uc.Register(context.Background(), validRegisterInput()); err != nil {
			t.Fatalf("register: %v", err)
		}

		code := f.tickets.reg["sess-1"].Code
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		for i := 0; i < 2; i++ {
			if _, err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{SessionID: "sess-1", Code: wrong}); err == nil {
				t.Fatal("expected mismatch error")
			}
		}

		f.clock.advance(30 * time.Second)
		if _, err := f.uc.ResendOTP(context.Background(), ResendOTPInput{SessionID: "sess-1"}); err != nil {
			t.Fatalf("resend: %v", err)
		}

		if got := f.tickets.reg["sess-1"].Attempts; got != 0 {
			t.Fatalf("expected attempts reset, got %d", got)
		}
	})

	t.Run("login resend goes through the dual write path", func(t *testing.T) {
		repo := newPersistRepo()
		seedUser(t, repo, 1, "bob", "bob@example.com", entity.RoleStudent, "right-pass-1")
		f := newFixture(t, repo)

		if _, err := f.uc.Login(context.Background(), LoginInput{SessionID: "s", Username: "bob", Password: "right-pass-1"}); err != nil {
			t.Fatalf("login: %v", err)
		}
		old := f.tickets.login["s"].Code

		f.clock.advance(31 * time.Second)

		out, err := f.uc.ResendOTP(context.Background(), ResendOTPInput{SessionID: "s"})
		if err != nil {
			t.Fatalf("resend: %v", err)
		}
		if out.Email != "b**@example.com" {
			t.Fatalf("expected masked email, got %q", out.Email)
		}

		fresh := f.tickets.login["s"].Code
		if fresh == old {
			t.Fatal("expected a fresh code")
		}
		if repo.otpCode[1] != fresh {
			t.Fatal("persisted code must follow the resend")
		}
		if repo.setCalls != 2 {
			t.Fatalf("expected 2 persisted writes, got %d", repo.setCalls)
		}
	})
}
