package entity

import "time"

type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      Role
	Password  string
	OtpCode   *string
	OtpSentAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type NewUser struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      Role
	Password  string
}

type UpdateUser struct {
	ID        int64
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *Role
	UpdatedBy int64
}

type UserListFilter struct {
	Search string
	Role   Role
	Limit  int32
	Offset int32
}

type UserRefreshToken struct {
	RefreshID                int64
	RefreshToken             string
	RefreshExpiresAt         time.Time
	RefreshRevoked           bool
	RefreshReplacedByTokenID *int64
	UserID                   int64
	UserEmail                string
	UserRole                 Role
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

type RotateRefreshToken struct {
	NewID        int64
	OldID        int64
	UserID       int64
	NewToken     string
	NewExpiresAt time.Time
}
