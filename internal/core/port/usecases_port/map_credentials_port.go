package usecases_port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"
)

type MapCredentialsUseCase interface {
	Resolve(ctx context.Context) domain.MapToken
	Submit(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
