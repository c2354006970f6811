package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
	"github.com/mzton/vantage/internal/core/port/usecases_port"
	"github.com/mzton/vantage/internal/core/usecase"
)

type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

// SessionHandler serves the per-session state: camera, selection, listing panel, assistant and location.
type SessionHandler struct {
	registry      *usecase.SessionRegistry
	renderer      port.MapRendererPort
	credentialsUC usecases_port.MapCredentialsUseCase
}

func NewSessionHandler(registry *usecase.SessionRegistry, renderer port.MapRendererPort, credentialsUC usecases_port.MapCredentialsUseCase) *SessionHandler {
	return &SessionHandler{
		registry:      registry,
		renderer:      renderer,
		credentialsUC: credentialsUC,
	}
}

// SessionCtx resolves {sessionID} and stores the session in the request context.
func (h *SessionHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		session, err := h.registry.Get(sessionID)
		if err != nil {
			WriteJSONError(w, http.StatusNotFound, "Session not found")
			return
		}

		ctx := r.Context()
		logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"session_id": sessionID})
		ctx = contextkeys.ContextWithLogger(ctx, logger)
		ctx = contextkeys.ContextWithSessionID(ctx, sessionID)
		ctx = context.WithValue(ctx, sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromRequest(r *http.Request) *usecase.Session {
	return r.Context().Value(sessionKey).(*usecase.Session)
}

func handlerLogger(r *http.Request, name string) port.LoggerPort {
	return contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": name})
}

// --- lifecycle ---

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := h.registry.Create(r.Context())
	RespondWithJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Get handles GET /api/v1/sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, toSessionResponse(sessionFromRequest(r)))
}

// Delete handles DELETE /api/v1/sessions/{sessionID}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeUseCaseError(w, handlerLogger(r, "DeleteSession"), err, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- view ---

func (h *SessionHandler) GetView(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).View.Snapshot())
}

// UpdateView handles PATCH .../view with a partial camera change.
func (h *SessionHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "UpdateView")
	var req ViewStateUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid view state update")
		return
	}
	session := sessionFromRequest(r)
	session.View.UpdateViewState(req.toDomain())
	RespondWithJSON(w, http.StatusOK, session.View.Snapshot())
}

// SetView handles PUT .../view with a complete camera.
func (h *SessionHandler) SetView(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SetView")
	var req SetViewStateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid view state")
		return
	}
	session := sessionFromRequest(r)
	_, err := session.View.SetViewState(domain.ViewState{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Zoom:      *req.Zoom,
		Bearing:   *req.Bearing,
		Pitch:     *req.Pitch,
	})
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to set view state")
		return
	}
	RespondWithJSON(w, http.StatusOK, session.View.Snapshot())
}

// FlyTo handles POST .../view/fly-to and pushes the command to the map.
func (h *SessionHandler) FlyTo(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "FlyTo")
	var req FlyToRequest
	if err := decodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	session := sessionFromRequest(r)
	cmd, err := session.View.FlyTo(*req.Latitude, *req.Longitude, req.Zoom)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to fly to location")
		return
	}
	if err := h.renderer.FlyTo(r.Context(), session.ID, cmd); err != nil {
		logger.Error("Renderer rejected fly-to command", err, nil)
	}
	RespondWithJSON(w, http.StatusOK, cmd)
}

func (h *SessionHandler) ResetView(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	session.View.ResetView()
	RespondWithJSON(w, http.StatusOK, session.View.Snapshot())
}

// SetStyle handles PUT .../view/style
func (h *SessionHandler) SetStyle(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SetStyle")
	var req StyleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "style is required")
		return
	}
	session := sessionFromRequest(r)
	if err := session.View.SetStyle(req.Style); err != nil {
		writeUseCaseError(w, logger, err, "Failed to set style")
		return
	}
	RespondWithJSON(w, http.StatusOK, session.View.Snapshot())
}

// SetFeature handles PUT .../view/features/{feature}
func (h *SessionHandler) SetFeature(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SetFeature")
	feature, err := domain.ParseMapFeature(chi.URLParam(r, "feature"))
	if err != nil {
		writeUseCaseError(w, logger, err, "Unknown feature")
		return
	}
	var req FeatureRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	session := sessionFromRequest(r)
	if err := session.View.SetFeature(feature, *req.Enabled); err != nil {
		writeUseCaseError(w, logger, err, "Failed to set feature")
		return
	}
	RespondWithJSON(w, http.StatusOK, ToggleResponse{Feature: feature, Enabled: *req.Enabled})
}

// ToggleFeature handles POST .../view/features/{feature}/toggle
func (h *SessionHandler) ToggleFeature(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "ToggleFeature")
	feature, err := domain.ParseMapFeature(chi.URLParam(r, "feature"))
	if err != nil {
		writeUseCaseError(w, logger, err, "Unknown feature")
		return
	}
	enabled, err := sessionFromRequest(r).View.ToggleFeature(feature)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to toggle feature")
		return
	}
	RespondWithJSON(w, http.StatusOK, ToggleResponse{Feature: feature, Enabled: enabled})
}

// SetMapError handles PUT .../view/error. A null message clears the error.
func (h *SessionHandler) SetMapError(w http.ResponseWriter, r *http.Request) {
	var req MapErrorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	session := sessionFromRequest(r)
	session.View.SetError(req.Message)
	RespondWithJSON(w, http.StatusOK, session.View.MapError())
}

func (h *SessionHandler) ClearMapError(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	session.View.ClearError()
	RespondWithJSON(w, http.StatusOK, session.View.MapError())
}

// SubmitMapToken handles PUT .../map-token: stores the token and clears the session's map error.
func (h *SessionHandler) SubmitMapToken(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SubmitSessionMapToken")
	var req MapTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Token is required")
		return
	}
	session := sessionFromRequest(r)
	if err := session.SubmitMapToken(r.Context(), h.credentialsUC, req.Token); err != nil {
		writeUseCaseError(w, logger, err, "Failed to store map token")
		return
	}
	token := h.credentialsUC.Resolve(r.Context())
	RespondWithJSON(w, http.StatusOK, MapTokenResponse{Token: token.Token, Source: token.Source, Configured: token.Configured()})
}

// --- selection ---

// Click handles POST .../clicks with the renderer's hit-test result.
func (h *SessionHandler) Click(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "MapClick")
	var click domain.MapClick
	if err := decodeAndValidate(r, &click); err != nil {
		logger.Warn("Invalid click", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid click")
		return
	}
	session := sessionFromRequest(r)
	state, err := session.Selection.HandleClick(r.Context(), click)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to handle click")
		return
	}
	RespondWithJSON(w, http.StatusOK, ClickResponse{Selection: state, Map: session.View.Snapshot()})
}

func (h *SessionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Selection.State())
}

// Select handles PUT .../selection
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SelectListing")
	var req SelectListingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "listingId is required")
		return
	}
	state, err := sessionFromRequest(r).Selection.SelectListing(r.Context(), req.ListingID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to select listing")
		return
	}
	RespondWithJSON(w, http.StatusOK, state)
}

func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Selection.Clear(r.Context()))
}

// --- listing panel ---

func (h *SessionHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Browser.State())
}

func (h *SessionHandler) FetchAllListings(w http.ResponseWriter, r *http.Request) {
	state, err := sessionFromRequest(r).Browser.FetchAll(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger(r, "FetchAllListings"), err, "Failed to fetch listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, state)
}

// SearchListings handles POST .../listings/search with a SearchQuery body.
func (h *SessionHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SessionSearchListings")
	var q domain.SearchQuery
	if err := decodeAndValidate(r, &q); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid search query")
		return
	}
	for _, t := range q.PropertyTypes {
		if !t.Valid() {
			WriteJSONError(w, http.StatusBadRequest, "Unknown property type: "+string(t))
			return
		}
	}
	state, err := sessionFromRequest(r).Browser.Search(r.Context(), q)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to search listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, state)
}

func (h *SessionHandler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	state, err := sessionFromRequest(r).Browser.ClearSearch(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger(r, "ClearSearch"), err, "Failed to fetch listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, state)
}

func (h *SessionHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	state, err := sessionFromRequest(r).Browser.LoadMore(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger(r, "LoadMore"), err, "Failed to load more listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, state)
}

// Hover handles PUT .../listings/hover. An empty id clears the hover.
func (h *SessionHandler) Hover(w http.ResponseWriter, r *http.Request) {
	var req HoverRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	session := sessionFromRequest(r)
	session.Browser.Hover(req.ListingID)
	RespondWithJSON(w, http.StatusOK, session.Browser.State())
}

// --- assistant ---

func (h *SessionHandler) GetAssistant(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Assistant.Snapshot())
}

// SendMessage handles POST .../assistant/messages and waits for the reply.
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "SendMessage")
	var req ChatMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Message is required")
		return
	}
	session := sessionFromRequest(r)
	if _, err := session.Assistant.SendMessage(r.Context(), req.Message); err != nil {
		writeUseCaseError(w, logger, err, "Failed to send message")
		return
	}
	RespondWithJSON(w, http.StatusOK, session.Assistant.Snapshot())
}

// Analyze handles POST .../assistant/analyze and waits for the analysis.
func (h *SessionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "AnalyzeProperty")
	var req AnalyzeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "listingId is required")
		return
	}
	session := sessionFromRequest(r)
	if _, err := session.Assistant.AnalyzeProperty(r.Context(), req.ListingID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to analyze property")
		return
	}
	RespondWithJSON(w, http.StatusOK, session.Assistant.Snapshot())
}

func (h *SessionHandler) OpenAssistant(w http.ResponseWriter, r *http.Request) {
	a := sessionFromRequest(r).Assistant
	a.Open()
	RespondWithJSON(w, http.StatusOK, AssistantOpenResponse{IsOpen: true})
}

func (h *SessionHandler) CloseAssistant(w http.ResponseWriter, r *http.Request) {
	a := sessionFromRequest(r).Assistant
	a.Close()
	RespondWithJSON(w, http.StatusOK, AssistantOpenResponse{IsOpen: false})
}

func (h *SessionHandler) ToggleAssistant(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, AssistantOpenResponse{IsOpen: sessionFromRequest(r).Assistant.Toggle()})
}

func (h *SessionHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	session.Assistant.ClearMessages()
	RespondWithJSON(w, http.StatusOK, session.Assistant.Snapshot())
}

// UpdateContext handles PATCH .../assistant/context
func (h *SessionHandler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	var req ChatContextRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	chatCtx := sessionFromRequest(r).Assistant.SetContext(domain.ChatContextUpdate{
		SelectedListingID: req.SelectedListingID,
		UserLocation:      req.UserLocation,
	})
	RespondWithJSON(w, http.StatusOK, chatCtx)
}

// --- geolocation ---

func (h *SessionHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Geolocation.State())
}

func (h *SessionHandler) RequestLocation(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Geolocation.Request())
}

// ReportLocation handles PUT .../location with a position fix.
func (h *SessionHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "ReportLocation")
	var req LocationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	var accuracy float64
	if req.Accuracy != nil {
		accuracy = *req.Accuracy
	}
	state, err := sessionFromRequest(r).Geolocation.Report(*req.Latitude, *req.Longitude, accuracy)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to store location")
		return
	}
	RespondWithJSON(w, http.StatusOK, state)
}

// FailLocation handles POST .../location/error
func (h *SessionHandler) FailLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationErrorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "code is required")
		return
	}
	RespondWithJSON(w, http.StatusOK, sessionFromRequest(r).Geolocation.Fail(domain.GeolocationErrorCode(req.Code)))
}
