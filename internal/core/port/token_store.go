package port

import "context"

// TokenStorePort persists the single user-supplied map credential.
// Get returns domain.ErrTokenNotFound when nothing is stored.
type TokenStorePort interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
