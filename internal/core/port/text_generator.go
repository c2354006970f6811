package port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"
)

// TextGeneratorPort produces assistant prose. It is unreliable by contract:
// callers must be ready for any error.
type TextGeneratorPort interface {
	AnalyzeProperty(ctx context.Context, listing domain.Listing) (string, error)
	Chat(ctx context.Context, message string, chatCtx domain.ChatContext) (string, error)
}
