package port

// Assistant reply outcomes.
const (
	ReplyGenerated = "generated"
	ReplyFallback  = "fallback"
	ReplyFailed    = "failed"
)

// MetricsPort records assistant activity.
type MetricsPort interface {
	AssistantReply(kind string, outcome string)
}
