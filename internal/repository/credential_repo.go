package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v3ai2026/vision/internal/model"
)

type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// FindByEmail looks a credential up by its exact email. The email column is
// the unique key and matching is case-sensitive.
func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (model.Credential, error) {
	var c model.Credential
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM credentials WHERE email = $1`, email).
		Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Credential{}, model.ErrCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("find credential by email: %w", err)
	}
	return c, nil
}

func (r *CredentialRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM credentials WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// CreateWithProfile inserts the credential and its profile row in a single
// transaction. Either both rows land or neither does.
func (r *CredentialRepository) CreateWithProfile(ctx context.Context, cred model.Credential, profile model.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin register transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO credentials (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		cred.ID, cred.Email, cred.PasswordHash, cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, email, full_name, subscription_tier, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		profile.ID, profile.Email, profile.FullName, profile.SubscriptionTier,
		profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit register transaction: %w", err)
	}
	return nil
}

// Delete removes the credential; the profile row goes with it via the
// foreign key cascade.
func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCredentialNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
