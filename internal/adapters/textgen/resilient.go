package textgen

import (
	"context"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// ResilientGenerator prefers the primary generator. A failed analysis falls
// back to the deterministic template; a failed chat is reported to the caller,
// which answers with its fixed failure message.
type ResilientGenerator struct {
	primary  port.TextGeneratorPort
	fallback port.TextGeneratorPort
	metrics  port.MetricsPort
}

func NewResilientGenerator(primary, fallback port.TextGeneratorPort, metrics port.MetricsPort) *ResilientGenerator {
	return &ResilientGenerator{primary: primary, fallback: fallback, metrics: metrics}
}

func (g *ResilientGenerator) AnalyzeProperty(ctx context.Context, listing domain.Listing) (string, error) {
	analysis, err := g.primary.AnalyzeProperty(ctx, listing)
	if err == nil {
		return analysis, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	contextkeys.LoggerFromContext(ctx).Warn("Text service unavailable, using fallback analysis", port.Fields{
		"listing_id": listing.ID,
		"error":      err.Error(),
	})
	if g.metrics != nil {
		g.metrics.AssistantReply("analysis", port.ReplyFallback)
	}
	return g.fallback.AnalyzeProperty(ctx, listing)
}

func (g *ResilientGenerator) Chat(ctx context.Context, message string, chatCtx domain.ChatContext) (string, error) {
	return g.primary.Chat(ctx, message, chatCtx)
}
