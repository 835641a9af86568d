package db

import (
	"context"

	"github.com/taskgrid/taskgrid/internal/identity/entity"
	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

func (s *DB) CreateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)`,
		in.ID, in.UserID, in.Token, in.ExpiresAt,
	)
	return s.mapError(err)
}

func (s *DB) GetUserRefreshToken(ctx context.Context, token string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var rt entity.UserRefreshToken
	var role string

	err = s.conn.QueryRow(ctx, `
		SELECT rt.id, rt.token, rt.expires_at, rt.revoked, rt.replaced_by_token_id,
		       u.id, u.email, u.role
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id AND u.deleted_at IS NULL
		WHERE rt.token = $1`,
		token,
	).Scan(
		&rt.RefreshID, &rt.RefreshToken, &rt.RefreshExpiresAt, &rt.RefreshRevoked,
		&rt.RefreshReplacedByTokenID, &rt.UserID, &rt.UserEmail, &role,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	rt.UserRole = entity.RoleFromString(role)
	return &rt, nil
}

func (s *DB) RevokeRefreshToken(ctx context.Context, token string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE token = $1 AND NOT revoked`,
		token,
	)
	return s.mapError(err)
}

func (s *DB) RevokeAllRefreshToken(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE user_id = $1 AND NOT revoked`,
		userID,
	)
	return s.mapError(err)
}

// RotateRefreshToken revokes the old token and inserts its replacement in
// one transaction. The guarded UPDATE makes rotation single-shot: a second
// caller racing on the same token sees zero rows and gets ErrNotFound.
func (s *DB) RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return s.mapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW(), replaced_by_token_id = $1
		WHERE id = $2 AND user_id = $3 AND NOT revoked`,
		ro.NewID, ro.OldID, ro.UserID,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)`,
		ro.NewID, ro.UserID, ro.NewToken, ro.NewExpiresAt,
	); err != nil {
		return s.mapError(err)
	}

	return s.mapError(tx.Commit(ctx))
}
