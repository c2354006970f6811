package rest

import (
	"net/http"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
	"github.com/mzton/vantage/internal/core/port/usecases_port"
	"github.com/mzton/vantage/internal/core/usecase"
)

type MapHandler struct {
	view               usecase.ViewSettings
	cluster            domain.ClusterConfig
	buildings          domain.Building3DConfig
	priceMarkerMinZoom float64
	credentialsUC      usecases_port.MapCredentialsUseCase
}

func NewMapHandler(
	view usecase.ViewSettings,
	cluster domain.ClusterConfig,
	buildings domain.Building3DConfig,
	priceMarkerMinZoom float64,
	credentialsUC usecases_port.MapCredentialsUseCase,
) *MapHandler {
	return &MapHandler{
		view:               view,
		cluster:            cluster,
		buildings:          buildings,
		priceMarkerMinZoom: priceMarkerMinZoom,
		credentialsUC:      credentialsUC,
	}
}

// Config handles GET /api/v1/map/config
func (h *MapHandler) Config(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, MapConfigResponse{
		InitialViewState: h.view.InitialView,
		Styles:           h.view.Styles,
		DefaultStyle:     h.view.DefaultStyle,
		Cluster: ClusterPaintResponse{
			MaxZoom:      h.cluster.MaxZoom,
			Radius:       h.cluster.Radius,
			MinPoints:    h.cluster.MinPoints,
			CircleColor:  h.cluster.CircleColorExpression(),
			CircleRadius: h.cluster.CircleRadiusExpression(),
		},
		Buildings3D:        h.buildings,
		AutoTilt:           h.view.AutoTilt,
		PriceMarkerMinZoom: h.priceMarkerMinZoom,
	})
}

// GetToken handles GET /api/v1/map/token
func (h *MapHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	token := h.credentialsUC.Resolve(r.Context())
	RespondWithJSON(w, http.StatusOK, MapTokenResponse{
		Token:      token.Token,
		Source:     token.Source,
		Configured: token.Configured(),
	})
}

// SubmitToken handles PUT /api/v1/map/token
func (h *MapHandler) SubmitToken(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubmitMapToken"})

	var req MapTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Token is required")
		return
	}
	if err := h.credentialsUC.Submit(r.Context(), req.Token); err != nil {
		writeUseCaseError(w, logger, err, "Failed to store map token")
		return
	}
	h.GetToken(w, r)
}

// ClearToken handles DELETE /api/v1/map/token
func (h *MapHandler) ClearToken(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ClearMapToken"})

	if err := h.credentialsUC.Clear(r.Context()); err != nil {
		writeUseCaseError(w, logger, err, "Failed to clear map token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
