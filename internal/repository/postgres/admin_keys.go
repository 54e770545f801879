package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/domain"
)

type adminKeyRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewAdminKeyRepository creates a new admin key repository
func NewAdminKeyRepository(db DBTX, logger *zap.Logger) *adminKeyRepository {
	return &adminKeyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *adminKeyRepository) Create(ctx context.Context, key *domain.AdminKey) error {
	query := `
		INSERT INTO admin_keys (id, name, key_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now
	}
	if key.UpdatedAt.IsZero() {
		key.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.Name,
		key.KeyHash,
		key.IsActive,
		key.CreatedAt,
		key.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create admin key", zap.Error(err))
		return err
	}

	return nil
}

// ListActive returns every active key. bcrypt hashes are salted, so callers
// must compare a presented key against each hash in turn.
func (r *adminKeyRepository) ListActive(ctx context.Context) ([]*domain.AdminKey, error) {
	query := `
		SELECT id, name, key_hash, is_active, created_at, updated_at
		FROM admin_keys
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query admin keys", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	keys := make([]*domain.AdminKey, 0)
	for rows.Next() {
		var key domain.AdminKey
		if err := rows.Scan(
			&key.ID,
			&key.Name,
			&key.KeyHash,
			&key.IsActive,
			&key.CreatedAt,
			&key.UpdatedAt,
		); err != nil {
			continue
		}
		keys = append(keys, &key)
	}

	return keys, rows.Err()
}
