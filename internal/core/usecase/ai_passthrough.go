package usecase

import (
	"context"
	"strings"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// AnalyzeListingUseCase serves stateless analysis requests.
type AnalyzeListingUseCase struct {
	generator port.TextGeneratorPort
}

func NewAnalyzeListingUseCase(generator port.TextGeneratorPort) *AnalyzeListingUseCase {
	return &AnalyzeListingUseCase{generator: generator}
}

func (uc *AnalyzeListingUseCase) Execute(ctx context.Context, listing domain.Listing) (string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "AnalyzeListing",
		"listing_id": listing.ID,
	})
	ucLogger.Info("Use case started", nil)

	analysis, err := uc.generator.AnalyzeProperty(ctx, listing)
	if err != nil {
		ucLogger.Error("Text generator returned an error", err, nil)
		return "", err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return analysis, nil
}

// ChatReplyUseCase serves stateless chat requests.
type ChatReplyUseCase struct {
	generator port.TextGeneratorPort
}

func NewChatReplyUseCase(generator port.TextGeneratorPort) *ChatReplyUseCase {
	return &ChatReplyUseCase{generator: generator}
}

func (uc *ChatReplyUseCase) Execute(ctx context.Context, message string, chatCtx domain.ChatContext) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.ErrEmptyMessage
	}

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":            "ChatReply",
		"selected_listing_id": chatCtx.SelectedListingID,
	})
	ucLogger.Info("Use case started", nil)

	reply, err := uc.generator.Chat(ctx, message, chatCtx)
	if err != nil {
		ucLogger.Error("Text generator returned an error", err, nil)
		return "", err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return reply, nil
}
