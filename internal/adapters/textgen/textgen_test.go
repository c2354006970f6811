package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/core/domain"
)

func TestCannedReply(t *testing.T) {
	selected := domain.ChatContext{SelectedListingID: "1"}

	tests := []struct {
		name    string
		message string
		ctx     domain.ChatContext
		want    string
	}{
		{"price with selection", "What about the PRICE?", selected, listingRules[0].reply},
		{"price without selection falls through", "What about the price?", domain.ChatContext{}, defaultReply},
		{"area with selection", "Is the area safe", selected, listingRules[1].reply},
		{"subway with selection", "nearest subway?", selected, listingRules[2].reply},
		{"greeting", "Hi there", domain.ChatContext{}, generalRules[0].reply},
		{"hi inside a word is not a greeting", "Can you suggest something?", domain.ChatContext{}, generalRules[1].reply},
		{"budget", "anything cheap", domain.ChatContext{}, generalRules[2].reply},
		{"luxury", "show me luxury", domain.ChatContext{}, generalRules[3].reply},
		{"default", "what time is it", domain.ChatContext{}, defaultReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CannedReply(tt.message, tt.ctx))
		})
	}
}

func TestFallbackGenerator_AnalysisIsTemplate(t *testing.T) {
	g := NewFallbackGenerator()
	listing := constants.MockListings[2]

	got, err := g.AnalyzeProperty(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackAnalysis(listing), got)
}

func TestRemoteClient_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2", req.Listing.ID)

		_ = json.NewEncoder(w).Encode(analyzeResponse{Analysis: "great place"})
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL+"/", "secret", time.Second)
	got, err := c.AnalyzeProperty(context.Background(), constants.MockListings[1])
	require.NoError(t, err)
	assert.Equal(t, "great place", got)
}

func TestRemoteClient_ChatNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, "", time.Second)
	_, err := c.Chat(context.Background(), "hello", domain.ChatContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

type failingGenerator struct{}

func (failingGenerator) AnalyzeProperty(context.Context, domain.Listing) (string, error) {
	return "", errors.New("unreachable")
}

func (failingGenerator) Chat(context.Context, string, domain.ChatContext) (string, error) {
	return "", errors.New("unreachable")
}

type countingMetrics struct{ outcomes []string }

func (m *countingMetrics) AssistantReply(kind, outcome string) {
	m.outcomes = append(m.outcomes, kind+":"+outcome)
}

func TestResilientGenerator(t *testing.T) {
	metrics := &countingMetrics{}
	g := NewResilientGenerator(failingGenerator{}, NewFallbackGenerator(), metrics)
	listing := constants.MockListings[0]

	analysis, err := g.AnalyzeProperty(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackAnalysis(listing), analysis)
	assert.Equal(t, []string{"analysis:fallback"}, metrics.outcomes)

	_, err = g.Chat(context.Background(), "hello", domain.ChatContext{})
	assert.Error(t, err)
}
