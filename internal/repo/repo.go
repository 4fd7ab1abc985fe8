package repo

import (
	"context"

	"contactbook/internal/domain/model"
)

// UserRepo is the durable source of truth for identity state.
type UserRepo interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	// SetRefreshToken unconditionally installs token as the user's current
	// refresh token, superseding whatever was there.
	SetRefreshToken(ctx context.Context, email, token string) (model.User, error)
	// RotateRefreshToken swaps old for next only if old is still the current
	// token. ErrNotFound means the stored token no longer matches.
	RotateRefreshToken(ctx context.Context, username, old, next string) error
	SetHashedPassword(ctx context.Context, email, hashed string) error
	SetConfirmed(ctx context.Context, email string) error
	SetAvatar(ctx context.Context, email, avatarURL string) (model.User, error)
}

type ContactFilter struct {
	Skip      int
	Limit     int
	FirstName string
	LastName  string
	Email     string
}

type ContactRepo interface {
	List(ctx context.Context, userID uint, f ContactFilter) ([]model.Contact, error)
	UpcomingBirthdays(ctx context.Context, userID uint, days int) ([]model.Contact, error)
	GetByID(ctx context.Context, userID, contactID uint) (model.Contact, error)
	Create(ctx context.Context, contact model.Contact) (model.Contact, error)
	Update(ctx context.Context, contact model.Contact) (model.Contact, error)
	Delete(ctx context.Context, userID, contactID uint) (model.Contact, error)
}

// SessionCache is an advisory TTL cache of user snapshots keyed by username.
// A miss is never an error; only backend I/O failures are.
type SessionCache interface {
	Get(ctx context.Context, username string) (model.User, bool, error)
	Put(ctx context.Context, username string, user model.User) error
}
