package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID
	Email string
	Name  string
	// PasswordHash is the bcrypt-hashed credential. It never leaves the
	// repository/service boundary and is excluded from API responses.
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	// Create inserts a new user together with its sign-up audit event.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, email, name, passwordHash string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	RecordAuthEvent(ctx context.Context, userID uuid.UUID, action string) error
}
