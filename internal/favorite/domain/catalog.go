package domain

import (
	"context"
	"time"
)

// User is the part of a user account the favorites engine reads.
type User struct {
	ID       string
	Username string
}

// Tip is the read-side view of a tip.
type Tip struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	Tags        []string
	CreatedAt   time.Time
}

// UserReader looks users up by internal id.
type UserReader interface {
	// FindByID returns ErrNotFound when the user does not exist.
	FindByID(ctx context.Context, id string) (*User, error)
}

// TipReader looks tips up by id.
type TipReader interface {
	// FindByID returns ErrNotFound when the tip does not exist.
	FindByID(ctx context.Context, id string) (*Tip, error)
	// FindByIDs returns the found tips keyed by id. Ids missing from the
	// result do not exist.
	FindByIDs(ctx context.Context, ids []string) (map[string]Tip, error)
}

// CategoryReader resolves category names.
type CategoryReader interface {
	// NamesByIDs returns category names keyed by id; unknown ids are absent.
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}
