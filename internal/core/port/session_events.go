package port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"
)

type SessionEventPublisherPort interface {
	Publish(ctx context.Context, event domain.SessionEvent) error
}
