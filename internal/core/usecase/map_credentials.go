package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// MapCredentialsUseCase resolves the map credential: environment first, then
// the stored user token, then the demo token.
type MapCredentialsUseCase struct {
	store     port.TokenStorePort
	envToken  string
	demoToken string
}

func NewMapCredentialsUseCase(store port.TokenStorePort, envToken, demoToken string) *MapCredentialsUseCase {
	return &MapCredentialsUseCase{
		store:     store,
		envToken:  strings.TrimSpace(envToken),
		demoToken: strings.TrimSpace(demoToken),
	}
}

// Resolve never fails: a broken store is logged and skipped.
func (uc *MapCredentialsUseCase) Resolve(ctx context.Context) domain.MapToken {
	if uc.envToken != "" {
		return domain.MapToken{Token: uc.envToken, Source: domain.TokenFromEnv}
	}

	stored, err := uc.store.Get(ctx)
	switch {
	case err == nil && stored != "":
		return domain.MapToken{Token: stored, Source: domain.TokenFromStore}
	case err != nil && !errors.Is(err, domain.ErrTokenNotFound):
		contextkeys.LoggerFromContext(ctx).Error("Token store read failed, falling back", err, nil)
	}

	if uc.demoToken != "" {
		return domain.MapToken{Token: uc.demoToken, Source: domain.TokenFromDemo}
	}
	return domain.MapToken{Source: domain.TokenUnresolved}
}

// Submit stores a user-supplied token.
func (uc *MapCredentialsUseCase) Submit(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrEmptyToken
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "SubmitMapToken"})
	if err := uc.store.Set(ctx, token); err != nil {
		logger.Error("Failed to store map token", err, nil)
		return err
	}
	logger.Info("Map token stored", nil)
	return nil
}

func (uc *MapCredentialsUseCase) Clear(ctx context.Context) error {
	if err := uc.store.Delete(ctx); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to clear map token", err, nil)
		return err
	}
	return nil
}
