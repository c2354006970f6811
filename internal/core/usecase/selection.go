package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// SelectionCoordinator turns map clicks into selection changes and camera moves.
// States: idle, or exactly one selected listing.
type SelectionCoordinator struct {
	mu        sync.Mutex
	sessionID string
	view      *ViewStateController
	assistant *AssistantSession
	listings  port.ListingFinder
	clusters  port.ClusterIndexPort
	renderer  port.MapRendererPort
	events    port.SessionEventPublisherPort
	now       func() time.Time

	selected *domain.Listing
	analysis *AnalysisTask
}

func NewSelectionCoordinator(
	sessionID string,
	view *ViewStateController,
	assistant *AssistantSession,
	listings port.ListingFinder,
	clusters port.ClusterIndexPort,
	renderer port.MapRendererPort,
	events port.SessionEventPublisherPort,
) *SelectionCoordinator {
	if events == nil {
		events = noopPublisher{}
	}
	if renderer == nil {
		renderer = noopRenderer{}
	}
	return &SelectionCoordinator{
		sessionID: sessionID,
		view:      view,
		assistant: assistant,
		listings:  listings,
		clusters:  clusters,
		renderer:  renderer,
		events:    events,
		now:       time.Now,
	}
}

// HandleClick dispatches a renderer click by the kind of feature that was hit.
func (c *SelectionCoordinator) HandleClick(ctx context.Context, click domain.MapClick) (domain.SelectionState, error) {
	switch click.Kind {
	case domain.ClickCluster:
		_, err := c.ExpandCluster(ctx, click.ClusterID, click.Center)
		return c.State(), err
	case domain.ClickListing:
		return c.SelectListing(ctx, click.ListingID)
	case domain.ClickBackground:
		return c.Clear(ctx), nil
	}
	return c.State(), fmt.Errorf("unknown click kind %q", click.Kind)
}

// ExpandCluster eases the camera to the zoom at which the cluster splits.
// The selection is never touched.
func (c *SelectionCoordinator) ExpandCluster(ctx context.Context, clusterID int64, center *domain.GeoPoint) (domain.CameraCommand, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "ExpandCluster",
		"session_id": c.sessionID,
		"cluster_id": clusterID,
	})

	zoom, err := c.clusters.ExpansionZoom(ctx, clusterID)
	if err != nil {
		logger.Warn("Could not resolve cluster expansion zoom", port.Fields{"error": err.Error()})
		return domain.CameraCommand{}, err
	}

	var target domain.GeoPoint
	if center != nil {
		target = *center
	} else {
		target, err = c.clusters.ClusterCenter(ctx, clusterID)
		if err != nil {
			logger.Warn("Could not resolve cluster center", port.Fields{"error": err.Error()})
			return domain.CameraCommand{}, err
		}
	}

	cmd, err := c.view.EaseTo(target, zoom)
	if err != nil {
		return domain.CameraCommand{}, err
	}
	if err := c.renderer.EaseTo(ctx, c.sessionID, cmd); err != nil {
		logger.Error("Renderer rejected ease-to command", err, nil)
	}

	logger.Debug("Cluster expanded", port.Fields{"zoom": zoom})
	return cmd, nil
}

// SelectListing replaces the current selection, flies the camera to the
// listing and starts an analysis when the assistant is free.
func (c *SelectionCoordinator) SelectListing(ctx context.Context, listingID string) (domain.SelectionState, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "SelectListing",
		"session_id": c.sessionID,
		"listing_id": listingID,
	})
	logger.Info("Use case started", nil)

	listing, found, err := c.listings.FindByID(ctx, listingID)
	if err != nil {
		logger.Error("Listing lookup failed", err, nil)
		return c.State(), err
	}
	if !found {
		return c.State(), fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}

	c.mu.Lock()
	selected := listing
	c.selected = &selected
	c.mu.Unlock()

	cmd, err := c.view.FlyTo(listing.Latitude, listing.Longitude, nil)
	if err != nil {
		logger.Warn("Listing cannot be flown to", port.Fields{"error": err.Error()})
	} else if err := c.renderer.FlyTo(ctx, c.sessionID, cmd); err != nil {
		logger.Error("Renderer rejected fly-to command", err, nil)
	}

	c.publish(ctx, domain.SessionEvent{Type: domain.EventListingSelected, ListingID: listing.ID})

	task, err := c.assistant.StartAnalysis(ctx, listing.ID)
	switch {
	case errors.Is(err, domain.ErrAssistantBusy):
		id := listing.ID
		c.assistant.SetContext(domain.ChatContextUpdate{SelectedListingID: &id})
		logger.Warn("Assistant is busy, analysis skipped", nil)
	case err != nil:
		logger.Error("Could not start analysis", err, nil)
	default:
		c.mu.Lock()
		c.analysis = task
		c.mu.Unlock()
		go c.awaitAnalysis(context.WithoutCancel(ctx), task)
	}

	logger.Info("Use case finished successfully", nil)
	return c.State(), nil
}

func (c *SelectionCoordinator) awaitAnalysis(ctx context.Context, task *AnalysisTask) {
	if _, err := task.Result(); err != nil {
		return
	}
	c.publish(ctx, domain.SessionEvent{
		Type:       domain.EventAnalysisCompleted,
		ListingID:  task.ListingID,
		RequestSeq: task.RequestSeq,
	})
}

// Clear returns to idle. Clearing an idle coordinator is a no-op.
func (c *SelectionCoordinator) Clear(ctx context.Context) domain.SelectionState {
	c.mu.Lock()
	prev := c.selected
	c.selected = nil
	c.mu.Unlock()

	if prev != nil {
		c.publish(ctx, domain.SessionEvent{Type: domain.EventSelectionCleared, ListingID: prev.ID})
	}
	return domain.SelectionState{}
}

func (c *SelectionCoordinator) State() domain.SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return domain.SelectionState{}
	}
	selected := *c.selected
	return domain.SelectionState{Selected: &selected}
}

// PendingAnalysis is the last analysis started by a selection, or nil.
func (c *SelectionCoordinator) PendingAnalysis() *AnalysisTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

func (c *SelectionCoordinator) publish(ctx context.Context, event domain.SessionEvent) {
	event.SessionID = c.sessionID
	event.OccurredAt = c.now().UTC()
	if err := c.events.Publish(ctx, event); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to publish session event", err, port.Fields{
			"event_type": event.Type,
			"session_id": c.sessionID,
		})
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.SessionEvent) error { return nil }

type noopRenderer struct{}

func (noopRenderer) FlyTo(context.Context, string, domain.CameraCommand) error { return nil }
func (noopRenderer) EaseTo(context.Context, string, domain.CameraCommand) error { return nil }
