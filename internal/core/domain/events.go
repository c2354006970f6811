package domain

import "time"

type SessionEventType string

const (
	EventListingSelected   SessionEventType = "listing_selected"
	EventSelectionCleared  SessionEventType = "selection_cleared"
	EventAnalysisCompleted SessionEventType = "analysis_completed"
)

// SessionEvent is emitted on selection and analysis transitions.
type SessionEvent struct {
	Type       SessionEventType `json:"type"`
	SessionID  string           `json:"session_id"`
	ListingID  string           `json:"listing_id,omitempty"`
	RequestSeq uint64           `json:"request_seq,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
