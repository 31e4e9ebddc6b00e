package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vibast-solutions/ms-go-relay-keys/app/dto"
	"github.com/vibast-solutions/ms-go-relay-keys/app/entity"
)

var (
	ErrInvalidAPIKey      = errors.New("invalid or expired api key")
	ErrKeyNotFound        = errors.New("api key not found")
	ErrKeyAlreadyDisabled = errors.New("api key is already disabled")
)

// RedactedPrefixLength is how many characters of the secret value are
// kept for display and audit purposes.
const RedactedPrefixLength = 8

type APIKeyRepository interface {
	Create(ctx context.Context, key *entity.APIKey) error
	FindActiveByHash(ctx context.Context, keyHash string) (*entity.APIKey, error)
	FindByKeyID(ctx context.Context, keyID string) (*entity.APIKey, error)
	List(ctx context.Context) ([]*entity.APIKey, error)
	Update(ctx context.Context, key *entity.APIKey) error
}

type GenerateKeyParams struct {
	Name             string
	Description      string
	TokenLimit       *int64
	DailyCostLimit   *float64
	MonthlyCostLimit *float64
	ExpiresAt        *time.Time
	CreatedBy        string
}

type APIKeyService interface {
	GenerateAPIKey(ctx context.Context, params GenerateKeyParams) (*dto.GeneratedKey, error)
	ValidateAPIKey(ctx context.Context, apiKey string) (*entity.APIKey, error)
	DeactivateAPIKey(ctx context.Context, keyID string) (*entity.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]*entity.APIKey, error)
}

type apiKeyService struct {
	repo      APIKeyRepository
	keyPrefix string
}

func NewAPIKeyService(repo APIKeyRepository, keyPrefix string) APIKeyService {
	return &apiKeyService{repo: repo, keyPrefix: keyPrefix}
}

func (s *apiKeyService) GenerateAPIKey(ctx context.Context, params GenerateKeyParams) (*dto.GeneratedKey, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	secretValue, keyHash, err := generateSecret(s.keyPrefix)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	key := &entity.APIKey{
		KeyID:       uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		KeyHash:     keyHash,
		KeyPrefix:   RedactSecret(secretValue),
		Status:      entity.KeyStatusActive,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if params.TokenLimit != nil {
		key.TokenLimit = sql.NullInt64{Int64: *params.TokenLimit, Valid: true}
	}
	if params.DailyCostLimit != nil {
		key.DailyCostLimit = sql.NullFloat64{Float64: *params.DailyCostLimit, Valid: true}
	}
	if params.MonthlyCostLimit != nil {
		key.MonthlyCostLimit = sql.NullFloat64{Float64: *params.MonthlyCostLimit, Valid: true}
	}
	if params.ExpiresAt != nil {
		key.ExpiresAt = sql.NullTime{Time: *params.ExpiresAt, Valid: true}
	}

	if err = s.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	return &dto.GeneratedKey{Key: key, SecretValue: secretValue}, nil
}

func (s *apiKeyService) ValidateAPIKey(ctx context.Context, apiKey string) (*entity.APIKey, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	key, err := s.repo.FindActiveByHash(ctx, hashSecret(apiKey))
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrInvalidAPIKey
	}

	return key, nil
}

func (s *apiKeyService) DeactivateAPIKey(ctx context.Context, keyID string) (*entity.APIKey, error) {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return nil, ErrKeyNotFound
	}

	key, err := s.repo.FindByKeyID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrKeyNotFound
	}
	if key.Status != entity.KeyStatusActive {
		return nil, ErrKeyAlreadyDisabled
	}

	key.Status = entity.KeyStatusDisabled
	key.UpdatedAt = time.Now()
	if err = s.repo.Update(ctx, key); err != nil {
		return nil, err
	}

	return key, nil
}

func (s *apiKeyService) ListAPIKeys(ctx context.Context) ([]*entity.APIKey, error) {
	return s.repo.List(ctx)
}

// RedactSecret keeps the leading characters of a secret value followed
// by an ellipsis, enough to identify a key without revealing it.
func RedactSecret(secretValue string) string {
	if len(secretValue) <= RedactedPrefixLength {
		return secretValue + "..."
	}
	return secretValue[:RedactedPrefixLength] + "..."
}

func generateSecret(prefix string) (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}

	secretValue := prefix + hex.EncodeToString(raw)
	return secretValue, hashSecret(secretValue), nil
}

func hashSecret(secretValue string) string {
	sum := sha256.Sum256([]byte(secretValue))
	return hex.EncodeToString(sum[:])
}
