package dto

import "github.com/vibast-solutions/ms-go-relay-keys/app/entity"

// GeneratedKey carries a freshly minted key together with its secret
// value. The secret is disclosed exactly once, to the creating caller.
type GeneratedKey struct {
	Key         *entity.APIKey
	SecretValue string
}
