package entity

import "time"

// RegistrationTicket is the pending-signup state parked in cache while the
// applicant proves ownership of the email address. No user row exists until
// the code is verified.
type RegistrationTicket struct {
	Profile  RegistrationProfile `json:"profile"`
	Code     string              `json:"code"`
	IssuedAt time.Time           `json:"issued_at"`
	Attempts int                 `json:"attempts"`
}

// RegistrationProfile carries the already-validated signup payload. Password
// is stored as a bcrypt hash, never plaintext.
type RegistrationProfile struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash"`
}

// LoginTicket is the second-factor state for an authenticated-but-unverified
// login. The account already exists, so only its identity is carried here.
type LoginTicket struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Role      string    `json:"role"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
}
