/**
 * @description
 * This file defines the storage contracts for the Dhukuti backend. Handlers
 * and services depend on these interfaces, never on the Postgres
 * implementation, which keeps the business logic testable with in-memory
 * stubs.
 */
package store

import (
	"context"
	"errors"

	"github.com/bhupen98/dhukuti/internal/domain"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername and ErrDuplicateEmail are mapped from the
	// database's unique constraints. The constraint is the authoritative
	// guard: two concurrent registrations can both pass an existence check,
	// but only one insert survives.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// OutboxMessage is one claimed row of the event outbox.
type OutboxMessage struct {
	ID         int64
	Exchange   string
	RoutingKey string
	Payload    []byte
	Attempts   int
}

// GroupRepository persists savings groups.
type GroupRepository interface {
	// CreateGroup inserts a group and populates its assigned ID.
	CreateGroup(ctx context.Context, group *domain.Group) error

	// ListGroups returns all groups in insertion order.
	ListGroups(ctx context.Context) ([]domain.Group, error)
}

// UserRepository persists accounts and their outbound email events.
type UserRepository interface {
	// CreateUserAndEnqueueEvent inserts the user and an outbox event in a
	// single transaction, so a registered account always has its
	// verification email queued.
	CreateUserAndEnqueueEvent(ctx context.Context, user *domain.User, exchange, routingKey string, payload interface{}) error

	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ActivateUser flips is_active to true.
	ActivateUser(ctx context.Context, id string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// EnqueueEvent writes a standalone outbox event (e.g. a reset email).
	EnqueueEvent(ctx context.Context, exchange, routingKey string, payload interface{}) error
}

// OutboxRepository is consumed by the dispatcher that drains the outbox.
type OutboxRepository interface {
	// ClaimOutboxMessages atomically marks up to limit due messages as
	// processing and returns them. Rows stuck in processing longer than
	// staleAfterSeconds are reclaimed.
	ClaimOutboxMessages(ctx context.Context, limit, staleAfterSeconds int) ([]OutboxMessage, error)

	MarkOutboxPublished(ctx context.Context, id int64) error

	// MarkOutboxFailed returns a message to pending with a retry delay.
	MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error
}
