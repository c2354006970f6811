package rest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// WriteJSONError responds with {"error": message}.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusForError maps core errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrClusterNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrUnknownStyle),
		errors.Is(err, domain.ErrUnknownFeature),
		errors.Is(err, domain.ErrUnknownPropertyType),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrEmptyToken):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAssistantBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeUseCaseError logs the failure at a level matching its status and writes the response.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error, fallbackMessage string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, status, fallbackMessage)
		return
	}
	logger.Warn("Request rejected", port.Fields{"error": err.Error(), "status_code": status})
	WriteJSONError(w, status, err.Error())
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func parseString(query url.Values, key string) string {
	return strings.TrimSpace(query.Get(key))
}

// parseFloat returns nil when the parameter is absent or malformed.
func parseFloat(query url.Values, key string) *float64 {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt(query url.Values, key string) *int {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// parseStringSlice accepts both repeated keys and comma-separated values.
func parseStringSlice(query url.Values, key string) []string {
	var out []string
	for _, raw := range query[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseBounds reads north/south/east/west. ok is false unless all four are valid numbers.
func parseBounds(query url.Values) (domain.Bounds, bool) {
	north, south := parseFloat(query, "north"), parseFloat(query, "south")
	east, west := parseFloat(query, "east"), parseFloat(query, "west")
	if north == nil || south == nil || east == nil || west == nil {
		return domain.Bounds{}, false
	}
	return domain.Bounds{North: *north, South: *south, East: *east, West: *west}, true
}

func parseBool(query url.Values, key string, def bool) bool {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
