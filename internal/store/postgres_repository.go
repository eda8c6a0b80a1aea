/**
 * @description
 * PostgreSQL implementation of the repository interfaces, backed by a pgx
 * connection pool. Unique-constraint violations (SQLSTATE 23505) are mapped
 * by constraint name to the duplicate-username / duplicate-email sentinel
 * errors so handlers can produce user-facing messages without inspecting
 * driver internals.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bhupen98/dhukuti/internal/domain"
)

// schema is executed at startup; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT users_username_key UNIQUE (username),
    CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS groups (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount BIGINT NOT NULL,
    frequency TEXT NOT NULL,
    members BIGINT NOT NULL,
    start_date DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS event_outbox (
    id BIGSERIAL PRIMARY KEY,
    exchange TEXT NOT NULL,
    routing_key TEXT NOT NULL,
    payload JSONB NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    attempts INT NOT NULL DEFAULT 0,
    next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    processing_started_at TIMESTAMPTZ,
    published_at TIMESTAMPTZ,
    last_error TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_event_outbox_due
    ON event_outbox (next_attempt_at) WHERE status = 'pending';
`

// Repository is the PostgreSQL-backed store.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a repository on top of an existing pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables the service needs if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateGroup inserts a group and populates its assigned ID.
func (r *Repository) CreateGroup(ctx context.Context, group *domain.Group) error {
	query := `
        INSERT INTO groups (name, description, amount, frequency, members, start_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		group.Name,
		group.Description,
		group.Amount,
		group.Frequency,
		group.Members,
		group.StartDate.Time,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// ListGroups returns all groups in insertion order.
func (r *Repository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	query := `
        SELECT id, name, description, amount, frequency, members, start_date
        FROM groups
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []domain.Group{}
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Amount, &g.Frequency, &g.Members, &g.StartDate.Time); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CreateUserAndEnqueueEvent inserts the user and an outbox event in one
// transaction.
func (r *Repository) CreateUserAndEnqueueEvent(
	ctx context.Context,
	user *domain.User,
	exchange, routingKey string,
	payload interface{},
) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO users (id, username, email, password_hash, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at
    `
	if err := tx.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return mapDuplicateErr(err)
	}

	if err := enqueueEventTx(ctx, tx, exchange, routingKey, payload); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const userColumns = `id, username, email, password_hash, is_active, created_at, updated_at`

// GetUserByID retrieves an account by its UUID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByUsername retrieves an account by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetUserByEmail retrieves an account by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *Repository) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ActivateUser flips is_active to true.
func (r *Repository) ActivateUser(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
    `, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EnqueueEvent writes a standalone outbox event.
func (r *Repository) EnqueueEvent(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO event_outbox (exchange, routing_key, payload)
        VALUES ($1, $2, $3::jsonb)
    `, strings.TrimSpace(exchange), strings.TrimSpace(routingKey), string(blob))
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

// ClaimOutboxMessages atomically claims up to limit due messages.
func (r *Repository) ClaimOutboxMessages(ctx context.Context, limit, staleAfterSeconds int) ([]OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if staleAfterSeconds <= 0 {
		staleAfterSeconds = 120
	}

	query := `
        WITH candidates AS (
            SELECT id
            FROM event_outbox
            WHERE (
                (status = 'pending' AND next_attempt_at <= NOW())
                OR (status = 'processing' AND processing_started_at < NOW() - ($2 * INTERVAL '1 second'))
            )
            ORDER BY created_at
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        UPDATE event_outbox AS o
        SET status = 'processing',
            processing_started_at = NOW(),
            attempts = o.attempts + 1
        FROM candidates
        WHERE o.id = candidates.id
        RETURNING o.id, o.exchange, o.routing_key, o.payload::text, o.attempts
    `

	rows, err := r.db.Query(ctx, query, limit, staleAfterSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]OutboxMessage, 0, limit)
	for rows.Next() {
		var (
			msg         OutboxMessage
			payloadText string
		)
		if err := rows.Scan(&msg.ID, &msg.Exchange, &msg.RoutingKey, &payloadText, &msg.Attempts); err != nil {
			return nil, err
		}
		msg.Payload = []byte(payloadText)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkOutboxPublished finalizes a successfully published message.
func (r *Repository) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
        UPDATE event_outbox
        SET status = 'published',
            published_at = NOW(),
            processing_started_at = NULL,
            last_error = NULL
        WHERE id = $1
    `, id)
	return err
}

// MarkOutboxFailed returns a message to pending with a retry delay.
func (r *Repository) MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	if len(reason) > 2000 {
		reason = reason[:2000]
	}
	_, err := r.db.Exec(ctx, `
        UPDATE event_outbox
        SET status = 'pending',
            next_attempt_at = NOW() + ($2 * INTERVAL '1 second'),
            processing_started_at = NULL,
            last_error = $3
        WHERE id = $1
    `, id, retryAfterSeconds, reason)
	return err
}

func enqueueEventTx(ctx context.Context, tx pgx.Tx, exchange, routingKey string, payload interface{}) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO event_outbox (exchange, routing_key, payload)
        VALUES ($1, $2, $3::jsonb)
    `, strings.TrimSpace(exchange), strings.TrimSpace(routingKey), string(blob))
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

// mapDuplicateErr converts a unique-constraint violation into the matching
// sentinel error, identified by constraint name.
func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return ErrDuplicateUsername
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrDuplicateEmail
		}
	}
	return err
}
