package constants

const (
	SessionEventsExchange = "vantage_session_exchange"

	RoutingKeyListingSelected   = "session.listing_selected"
	RoutingKeySelectionCleared  = "session.selection_cleared"
	RoutingKeyAnalysisCompleted = "session.analysis_completed"
)
