package usecases_port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"
)

type AnalyzeListingUseCase interface {
	Execute(ctx context.Context, listing domain.Listing) (string, error)
}

type ChatReplyUseCase interface {
	Execute(ctx context.Context, message string, chatCtx domain.ChatContext) (string, error)
}
