package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// RemoteClient calls an external text-generation service over HTTP JSON.
type RemoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRemoteClient(baseURL, apiKey string, timeout time.Duration) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Listing domain.Listing `json:"listing"`
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
}

type chatRequest struct {
	Message string             `json:"message"`
	Context domain.ChatContext `json:"context"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (c *RemoteClient) AnalyzeProperty(ctx context.Context, listing domain.Listing) (string, error) {
	var out analyzeResponse
	if err := c.post(ctx, "/analyze", analyzeRequest{Listing: listing}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Analysis) == "" {
		return "", fmt.Errorf("text service returned an empty analysis")
	}
	return out.Analysis, nil
}

func (c *RemoteClient) Chat(ctx context.Context, message string, chatCtx domain.ChatContext) (string, error) {
	var out chatResponse
	if err := c.post(ctx, "/chat", chatRequest{Message: message, Context: chatCtx}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("text service returned an empty reply")
	}
	return out.Response, nil
}

func (c *RemoteClient) post(ctx context.Context, path string, payload any, out any) error {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TextServiceClient",
		"path":      path,
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	clientLogger.Debug("Sending request to text service", nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("text service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("text service returned status %d: %s", resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode text service response: %w", err)
	}
	return nil
}
