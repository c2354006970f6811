package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// ClientChannel carries pre-formatted SSE frames to one connected map.
type ClientChannel chan []byte

type cameraEvent struct {
	ctx       context.Context
	sessionID string
	cmd       domain.CameraCommand
}

// SSERenderer forwards camera commands to the map clients of a session over server-sent events.
type SSERenderer struct {
	// clients maps session id to its open streams (one per browser tab).
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	events chan cameraEvent
	done   chan struct{}
	once   sync.Once
	logger port.LoggerPort
}

func NewSSERenderer(baseLogger port.LoggerPort) *SSERenderer {
	r := &SSERenderer{
		clients: make(map[string][]ClientChannel),
		events:  make(chan cameraEvent, 100),
		done:    make(chan struct{}),
		logger:  baseLogger.WithFields(port.Fields{"component": "SSERenderer"}),
	}
	go r.dispatcher()
	return r
}

func (r *SSERenderer) dispatcher() {
	r.logger.Debug("Camera dispatcher started", nil)
	for {
		var ev cameraEvent
		select {
		case ev = <-r.events:
		case <-r.done:
			r.logger.Debug("Camera dispatcher stopped", nil)
			return
		}

		eventLogger := contextkeys.LoggerFromContext(ev.ctx).WithFields(port.Fields{
			"component":  "SSERenderer.dispatcher",
			"session_id": ev.sessionID,
			"kind":       ev.cmd.Kind,
		})

		payload, err := json.Marshal(ev.cmd)
		if err != nil {
			eventLogger.Error("Failed to marshal camera command", err, nil)
			continue
		}
		frame := []byte(fmt.Sprintf("event: camera\ndata: %s\n\n", payload))

		r.mu.RLock()
		channels := r.clients[ev.sessionID]
		if len(channels) == 0 {
			eventLogger.Debug("No map attached to session, command dropped", nil)
		}
		for _, ch := range channels {
			select {
			case ch <- frame:
			default:
				eventLogger.Warn("Client channel is full, skipping", nil)
			}
		}
		r.mu.RUnlock()
	}
}

func (r *SSERenderer) FlyTo(ctx context.Context, sessionID string, cmd domain.CameraCommand) error {
	return r.enqueue(ctx, sessionID, cmd)
}

func (r *SSERenderer) EaseTo(ctx context.Context, sessionID string, cmd domain.CameraCommand) error {
	return r.enqueue(ctx, sessionID, cmd)
}

func (r *SSERenderer) enqueue(ctx context.Context, sessionID string, cmd domain.CameraCommand) error {
	select {
	case r.events <- cameraEvent{ctx: context.WithoutCancel(ctx), sessionID: sessionID, cmd: cmd}:
		return nil
	case <-r.done:
		return fmt.Errorf("renderer is closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddClient registers a new stream for the session.
func (r *SSERenderer) AddClient(sessionID string) ClientChannel {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(ClientChannel, 16)
	r.clients[sessionID] = append(r.clients[sessionID], ch)

	r.logger.Info("Map client connected", port.Fields{
		"session_id":  sessionID,
		"connections": len(r.clients[sessionID]),
	})
	return ch
}

// RemoveClient unregisters a stream when the client disconnects.
func (r *SSERenderer) RemoveClient(sessionID string, ch ClientChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels := r.clients[sessionID]
	kept := channels[:0]
	for _, c := range channels {
		if c != ch {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		delete(r.clients, sessionID)
	} else {
		r.clients[sessionID] = kept
	}
	r.logger.Debug("Map client disconnected", port.Fields{
		"session_id":  sessionID,
		"connections": len(kept),
	})
}

// Close stops the dispatcher. Pending commands are dropped.
func (r *SSERenderer) Close() {
	r.once.Do(func() { close(r.done) })
}

// Done is closed by Close. Open streams watch it to end themselves.
func (r *SSERenderer) Done() <-chan struct{} {
	return r.done
}
