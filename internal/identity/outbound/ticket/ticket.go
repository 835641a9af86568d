// Package ticket stores pending OTP verification state in the expiring
// key-value cache. Payloads are sealed per session and purpose, so a leaked
// cache entry reveals neither codes nor registration profiles.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/cache"
	"github.com/taskgrid/taskgrid/internal/pkg/cryptobox"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefixRegistration = "otp:register:"
	keyPrefixLogin        = "otp:login:"
)

type Store struct {
	cache  cache.Cache
	sealer cryptobox.Sealer
	ins    instrument.Instrumentation
}

func NewStore(c cache.Cache, sealer cryptobox.Sealer, ins instrument.Instrumentation) *Store {
	return &Store{cache: c, sealer: sealer, ins: ins}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.ticket").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) save(ctx context.Context, key, sessionID string, purpose cryptobox.Purpose, v any, ttl time.Duration) error {
	plain, err := json.Marshal(v)
	if err != nil {
		return err
	}

	sealed, err := s.sealer.Seal(plain, cryptobox.Scope{SessionID: sessionID, Purpose: purpose})
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, key, sealed, ttl)
}

func (s *Store) load(ctx context.Context, key, sessionID string, purpose cryptobox.Purpose, v any) error {
	sealed, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return goerror.ErrNotFound
	}
	if err != nil {
		return err
	}

	plain, err := s.sealer.Open(sealed, cryptobox.Scope{SessionID: sessionID, Purpose: purpose})
	if err != nil {
		// Undecryptable state is unusable state. Treat it as absent so the
		// caller restarts the flow instead of erroring forever.
		_ = s.cache.Delete(ctx, key)
		return goerror.ErrNotFound
	}

	return json.Unmarshal(plain, v)
}

func (s *Store) SaveRegistration(ctx context.Context, sessionID string, t entity.RegistrationTicket, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "SaveRegistration")
	defer func() { s.endSpan(span, err) }()

	err = s.save(ctx, keyPrefixRegistration+sessionID, sessionID, cryptobox.PurposeRegistrationTicket, t, ttl)
	return err
}

func (s *Store) GetRegistration(ctx context.Context, sessionID string) (_ *entity.RegistrationTicket, err error) {
	ctx, span := s.startSpan(ctx, "GetRegistration")
	defer func() { s.endSpan(span, err) }()

	var t entity.RegistrationTicket
	if err = s.load(ctx, keyPrefixRegistration+sessionID, sessionID, cryptobox.PurposeRegistrationTicket, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteRegistration(ctx context.Context, sessionID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteRegistration")
	defer func() { s.endSpan(span, err) }()

	err = s.cache.Delete(ctx, keyPrefixRegistration+sessionID)
	return err
}

func (s *Store) SaveLogin(ctx context.Context, sessionID string, t entity.LoginTicket, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "SaveLogin")
	defer func() { s.endSpan(span, err) }()

	err = s.save(ctx, keyPrefixLogin+sessionID, sessionID, cryptobox.PurposeLoginTicket, t, ttl)
	return err
}

func (s *Store) GetLogin(ctx context.Context, sessionID string) (_ *entity.LoginTicket, err error) {
	ctx, span := s.startSpan(ctx, "GetLogin")
	defer func() { s.endSpan(span, err) }()

	var t entity.LoginTicket
	if err = s.load(ctx, keyPrefixLogin+sessionID, sessionID, cryptobox.PurposeLoginTicket, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteLogin(ctx context.Context, sessionID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteLogin")
	defer func() { s.endSpan(span, err) }()

	err = s.cache.Delete(ctx, keyPrefixLogin+sessionID)
	return err
}
