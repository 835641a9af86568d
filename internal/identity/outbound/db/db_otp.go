package db

import (
	"context"
	"time"
)

// The persisted OTP columns mirror the session ticket so operators can see
// a pending login challenge on the user row itself.

func (s *DB) SetUserOTP(ctx context.Context, userID int64, code string, sentAt time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "SetUserOTP")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE users SET otp_code = $1, otp_sent_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
		code, sentAt, userID,
	)
	return s.mapError(err)
}

// VerifyUserOTP checks code equality and freshness in one query. The window
// matches the mailed-code lifetime.
func (s *DB) VerifyUserOTP(ctx context.Context, userID int64, code string, now time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "VerifyUserOTP")
	defer func() { s.endSpan(span, err) }()

	var ok bool
	err = s.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE id = $1 AND deleted_at IS NULL
			  AND otp_code = $2
			  AND otp_sent_at IS NOT NULL
			  AND otp_sent_at >= $3 - INTERVAL '5 minutes'
		)`,
		userID, code, now,
	).Scan(&ok)
	if err != nil {
		return false, s.mapError(err)
	}
	return ok, nil
}

func (s *DB) ClearUserOTP(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "ClearUserOTP")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE users SET otp_code = NULL, otp_sent_at = NULL WHERE id = $1 AND deleted_at IS NULL`,
		userID,
	)
	return s.mapError(err)
}
