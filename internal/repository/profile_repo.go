package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v3ai2026/vision/internal/model"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, avatar_url, subscription_tier, subscription_status,
		        created_at, updated_at
		 FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.SubscriptionTier,
			&p.SubscriptionStatus, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, model.ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("find profile by id: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p model.Profile) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET full_name = $2, avatar_url = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.FullName, p.AvatarURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}
