package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
	"github.com/mzton/vantage/internal/core/port/usecases_port"
)

type ListingsHandler struct {
	listingsUC usecases_port.ListingQueryUseCase
	clustersUC usecases_port.ClusterQueryUseCase
}

func NewListingsHandler(listingsUC usecases_port.ListingQueryUseCase, clustersUC usecases_port.ClusterQueryUseCase) *ListingsHandler {
	return &ListingsHandler{
		listingsUC: listingsUC,
		clustersUC: clustersUC,
	}
}

// FindAll handles GET /api/v1/listings
func (h *ListingsHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "FindAllListings"})

	listings, err := h.listingsUC.FindAll(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, ListingsResponse{Listings: listings, Total: len(listings)})
}

// FindByID handles GET /api/v1/listings/{listingID}
func (h *ListingsHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "FindListingByID",
		"listing_id": listingID,
	})

	listing, found, err := h.listingsUC.FindByID(r.Context(), listingID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve listing")
		return
	}
	if !found {
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, listing)
}

// FindByBounds handles GET /api/v1/listings/bounds?north=&south=&east=&west=
func (h *ListingsHandler) FindByBounds(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "FindListingsByBounds"})

	bounds, ok := parseBounds(r.URL.Query())
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "north, south, east and west are required numbers")
		return
	}

	listings, err := h.listingsUC.FindByBounds(r.Context(), bounds)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, ListingsResponse{Listings: listings, Total: len(listings)})
}

// FindNearby handles GET /api/v1/listings/nearby?lat=&lng=&radiusKm=
func (h *ListingsHandler) FindNearby(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "FindNearbyListings"})
	query := r.URL.Query()

	lat, lng, radius := parseFloat(query, "lat"), parseFloat(query, "lng"), parseFloat(query, "radiusKm")
	if lat == nil || lng == nil || radius == nil {
		WriteJSONError(w, http.StatusBadRequest, "lat, lng and radiusKm are required numbers")
		return
	}

	listings, err := h.listingsUC.FindNearby(r.Context(), *lat, *lng, *radius)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, ListingsResponse{Listings: listings, Total: len(listings)})
}

// searchQueryFromRequest reads a SearchQuery from URL parameters.
func searchQueryFromRequest(r *http.Request) (domain.SearchQuery, error) {
	query := r.URL.Query()

	q := domain.SearchQuery{
		Keyword:     parseString(query, "keyword"),
		MinPrice:    parseFloat(query, "minPrice"),
		MaxPrice:    parseFloat(query, "maxPrice"),
		MinBedrooms: parseInt(query, "minBedrooms"),
		MaxBedrooms: parseInt(query, "maxBedrooms"),
	}
	for _, raw := range parseStringSlice(query, "propertyTypes") {
		t, err := domain.ParsePropertyType(raw)
		if err != nil {
			return domain.SearchQuery{}, err
		}
		q.PropertyTypes = append(q.PropertyTypes, t)
	}
	if bounds, ok := parseBounds(query); ok {
		q.Bounds = &bounds
	}
	if limit := parseInt(query, "limit"); limit != nil {
		q.Limit = *limit
	}
	if offset := parseInt(query, "offset"); offset != nil {
		q.Offset = *offset
	}
	return q, nil
}

// Search handles GET /api/v1/listings/search
func (h *ListingsHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SearchListings"})

	q, err := searchQueryFromRequest(r)
	if err != nil {
		writeUseCaseError(w, logger, err, "Invalid search query")
		return
	}

	result, err := h.listingsUC.Search(r.Context(), q)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to search listings")
		return
	}
	logger.Debug("Search served", port.Fields{"total": result.Total, "returned": len(result.Listings)})
	RespondWithJSON(w, http.StatusOK, result)
}

// GeoJSON handles GET /api/v1/listings/geojson
func (h *ListingsHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListingsGeoJSON"})

	fc, err := h.listingsUC.GeoJSON(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to build GeoJSON")
		return
	}
	body, err := fc.MarshalJSON()
	if err != nil {
		logger.Error("Failed to marshal GeoJSON", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build GeoJSON")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Clusters handles GET /api/v1/clusters?zoom=&clustering=&north=&south=&east=&west=
func (h *ListingsHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Clusters"})
	query := r.URL.Query()

	zoom := parseFloat(query, "zoom")
	if zoom == nil {
		WriteJSONError(w, http.StatusBadRequest, "zoom is a required number")
		return
	}
	var bounds *domain.Bounds
	if b, ok := parseBounds(query); ok {
		bounds = &b
	}

	features, err := h.clustersUC.Execute(r.Context(), *zoom, bounds, parseBool(query, "clustering", true))
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to compute clusters")
		return
	}
	RespondWithJSON(w, http.StatusOK, ClustersResponse{Zoom: *zoom, Features: features})
}
