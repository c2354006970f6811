package domain

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type AnalysisType string

const (
	AnalysisProperty AnalysisType = "property"
)

// ChatMessageMetadata links a message to the request that produced it.
type ChatMessageMetadata struct {
	ListingID    string       `json:"listingId,omitempty"`
	AnalysisType AnalysisType `json:"analysisType,omitempty"`
	RequestSeq   uint64       `json:"requestSeq,omitempty"`
}

type ChatMessage struct {
	ID        string               `json:"id"`
	Role      ChatRole             `json:"role"`
	Content   string               `json:"content"`
	Timestamp time.Time            `json:"timestamp"`
	Metadata  *ChatMessageMetadata `json:"metadata,omitempty"`
}

// ChatContext is what the assistant knows about the user's current focus.
type ChatContext struct {
	SelectedListingID string    `json:"selectedListingId,omitempty"`
	UserLocation      *GeoPoint `json:"userLocation,omitempty"`
}

// ChatContextUpdate is a partial context change; nil fields are kept.
type ChatContextUpdate struct {
	SelectedListingID *string
	UserLocation      *GeoPoint
}

// Fixed assistant texts.
const (
	WelcomeMessageID       = "welcome"
	WelcomeMessage         = "Hi! I'm Vantage AI. Select a property to get a detailed analysis, or ask me anything about the NYC market."
	ChatFailureMessage     = "I'm having trouble connecting right now. Please try again."
	AnalysisFailureMessage = "Unable to analyze this property right now. Please try again."
)
