package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mzton/vantage/internal/adapters/renderer"
	"github.com/mzton/vantage/internal/core/port"
)

const keepAliveInterval = 15 * time.Second

// CameraStreamHandler streams camera commands of one session as server-sent events.
type CameraStreamHandler struct {
	renderer *renderer.SSERenderer
}

func NewCameraStreamHandler(r *renderer.SSERenderer) *CameraStreamHandler {
	return &CameraStreamHandler{renderer: r}
}

// Subscribe handles GET /api/v1/sessions/{sessionID}/camera
func (h *CameraStreamHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	logger := handlerLogger(r, "SubscribeCamera")

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("Response writer does not support streaming", nil, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.renderer.AddClient(session.ID)
	defer h.renderer.RemoveClient(session.ID, clientChan)

	fmt.Fprintf(w, "event: connected\ndata: {\"sessionId\":%q}\n\n", session.ID)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-clientChan:
			if _, err := w.Write(frame); err != nil {
				logger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()
			logger.Debug("Sent camera command", port.Fields{"bytes": len(frame)})

		case <-ticker.C:
			// comment lines keep proxies from closing the idle stream
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-h.renderer.Done():
			logger.Info("Renderer closed, ending camera stream", nil)
			return

		case <-r.Context().Done():
			logger.Info("Camera stream client disconnected", nil)
			return
		}
	}
}
