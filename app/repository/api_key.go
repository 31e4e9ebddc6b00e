package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-relay-keys/app/entity"
)

type APIKeyRepository struct {
	db DBTX
}

func NewAPIKeyRepository(db DBTX) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	query := `
		INSERT INTO api_keys (
			key_id, name, description, key_hash, key_prefix, token_limit,
			daily_cost_limit, monthly_cost_limit, status, created_by, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		key.KeyID,
		key.Name,
		key.Description,
		key.KeyHash,
		key.KeyPrefix,
		key.TokenLimit,
		key.DailyCostLimit,
		key.MonthlyCostLimit,
		key.Status,
		key.CreatedBy,
		key.ExpiresAt,
		key.CreatedAt,
		key.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	key.ID = uint64(id)
	return nil
}

func (r *APIKeyRepository) FindActiveByHash(ctx context.Context, keyHash string) (*entity.APIKey, error) {
	query := `
		SELECT id, key_id, name, description, key_hash, key_prefix, token_limit,
		       daily_cost_limit, monthly_cost_limit, status, created_by, expires_at, created_at, updated_at
		FROM api_keys
		WHERE key_hash = ? AND status = 'active' AND (expires_at IS NULL OR expires_at > NOW())
		LIMIT 1
	`
	return r.findOne(ctx, query, keyHash)
}

func (r *APIKeyRepository) FindByKeyID(ctx context.Context, keyID string) (*entity.APIKey, error) {
	query := `
		SELECT id, key_id, name, description, key_hash, key_prefix, token_limit,
		       daily_cost_limit, monthly_cost_limit, status, created_by, expires_at, created_at, updated_at
		FROM api_keys
		WHERE key_id = ?
		LIMIT 1
	`
	return r.findOne(ctx, query, keyID)
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*entity.APIKey, error) {
	query := `
		SELECT id, key_id, name, description, key_hash, key_prefix, token_limit,
		       daily_cost_limit, monthly_cost_limit, status, created_by, expires_at, created_at, updated_at
		FROM api_keys
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]*entity.APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows.Scan)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *APIKeyRepository) Update(ctx context.Context, key *entity.APIKey) error {
	query := `
		UPDATE api_keys SET
			name = ?,
			description = ?,
			token_limit = ?,
			daily_cost_limit = ?,
			monthly_cost_limit = ?,
			status = ?,
			expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		key.Name,
		key.Description,
		key.TokenLimit,
		key.DailyCostLimit,
		key.MonthlyCostLimit,
		key.Status,
		key.ExpiresAt,
		key.UpdatedAt,
		key.ID,
	)
	return err
}

func (r *APIKeyRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.APIKey, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	key, err := scanAPIKey(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return key, nil
}

type rowScanner func(dest ...interface{}) error

func scanAPIKey(scan rowScanner) (*entity.APIKey, error) {
	key := &entity.APIKey{}
	if err := scan(
		&key.ID,
		&key.KeyID,
		&key.Name,
		&key.Description,
		&key.KeyHash,
		&key.KeyPrefix,
		&key.TokenLimit,
		&key.DailyCostLimit,
		&key.MonthlyCostLimit,
		&key.Status,
		&key.CreatedBy,
		&key.ExpiresAt,
		&key.CreatedAt,
		&key.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return key, nil
}
