package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
	"github.com/mzton/vantage/internal/core/port/usecases_port"
)

// AIHandler exposes the text generator without a session.
type AIHandler struct {
	analyzeUC usecases_port.AnalyzeListingUseCase
	chatUC    usecases_port.ChatReplyUseCase
}

func NewAIHandler(analyzeUC usecases_port.AnalyzeListingUseCase, chatUC usecases_port.ChatReplyUseCase) *AIHandler {
	return &AIHandler{analyzeUC: analyzeUC, chatUC: chatUC}
}

// Analyze handles POST /api/ai/analyze
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AIAnalyze"})

	var req AIAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Listing == nil {
		WriteJSONError(w, http.StatusBadRequest, "Listing data is required")
		return
	}

	analysis, err := h.analyzeUC.Execute(r.Context(), *req.Listing)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to analyze property")
		return
	}
	RespondWithJSON(w, http.StatusOK, AIAnalyzeResponse{Analysis: analysis})
}

// Chat handles POST /api/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AIChat"})

	var req AIChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Message is required")
		return
	}

	var chatCtx domain.ChatContext
	if req.Context != nil {
		chatCtx = *req.Context
	}

	reply, err := h.chatUC.Execute(r.Context(), req.Message, chatCtx)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to generate reply")
		return
	}
	RespondWithJSON(w, http.StatusOK, AIChatResponse{Response: reply})
}
