package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// AssistantSnapshot is the observable state of an assistant session.
type AssistantSnapshot struct {
	Messages []domain.ChatMessage `json:"messages"`
	IsTyping bool                 `json:"isTyping"`
	IsOpen   bool                 `json:"isOpen"`
	Context  domain.ChatContext   `json:"context"`
}

// AssistantSession is the chat log of one session. At most one reply is in
// flight: while typing, new messages and analyses are rejected.
type AssistantSession struct {
	mu        sync.Mutex
	generator port.TextGeneratorPort
	listings  port.ListingFinder
	metrics   port.MetricsPort
	now       func() time.Time
	newID     func() string

	messages []domain.ChatMessage
	isTyping bool
	isOpen   bool
	chatCtx  domain.ChatContext
	seq      uint64
}

func NewAssistantSession(generator port.TextGeneratorPort, listings port.ListingFinder, metrics port.MetricsPort) *AssistantSession {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	s := &AssistantSession{
		generator: generator,
		listings:  listings,
		metrics:   metrics,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	s.messages = []domain.ChatMessage{s.welcome()}
	return s
}

func (s *AssistantSession) welcome() domain.ChatMessage {
	return domain.ChatMessage{
		ID:        domain.WelcomeMessageID,
		Role:      domain.RoleAssistant,
		Content:   domain.WelcomeMessage,
		Timestamp: s.now(),
	}
}

// SendMessage appends the user message and the generated reply. Blank text
// returns ErrEmptyMessage and a pending reply returns ErrAssistantBusy; the
// log is untouched in both cases. Generator failures become a fixed reply.
func (s *AssistantSession) SendMessage(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}

	s.mu.Lock()
	if s.isTyping {
		s.mu.Unlock()
		return domain.ChatMessage{}, domain.ErrAssistantBusy
	}
	s.seq++
	seq := s.seq
	s.messages = append(s.messages, domain.ChatMessage{
		ID:        s.newID(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: s.now(),
		Metadata:  &domain.ChatMessageMetadata{RequestSeq: seq},
	})
	s.isTyping = true
	chatCtx := s.chatCtx
	s.mu.Unlock()

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "SendChatMessage",
		"request_seq": seq,
	})
	logger.Info("Use case started", nil)

	content := domain.ChatFailureMessage
	reply, err := s.generator.Chat(ctx, text, chatCtx)
	switch {
	case err != nil:
		logger.Error("Text generator failed, replying with fallback message", err, nil)
		s.metrics.AssistantReply("chat", port.ReplyFailed)
	case strings.TrimSpace(reply) == "":
		logger.Warn("Text generator returned an empty reply", nil)
		s.metrics.AssistantReply("chat", port.ReplyFailed)
	default:
		content = reply
		s.metrics.AssistantReply("chat", port.ReplyGenerated)
	}

	msg := domain.ChatMessage{
		ID:        s.newID(),
		Role:      domain.RoleAssistant,
		Content:   content,
		Timestamp: s.now(),
		Metadata:  &domain.ChatMessageMetadata{RequestSeq: seq},
	}
	s.finish(msg)

	logger.Info("Use case finished successfully", nil)
	return msg, nil
}

// AnalyzeProperty runs an analysis synchronously. See StartAnalysis.
func (s *AssistantSession) AnalyzeProperty(ctx context.Context, listingID string) (domain.ChatMessage, error) {
	seq, err := s.beginAnalysis(listingID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return s.runAnalysis(ctx, listingID, seq)
}

// StartAnalysis reserves the typing slot, then resolves and analyzes the
// listing in the background. The returned task may be cancelled; a cancelled
// task appends nothing.
func (s *AssistantSession) StartAnalysis(ctx context.Context, listingID string) (*AnalysisTask, error) {
	seq, err := s.beginAnalysis(listingID)
	if err != nil {
		return nil, err
	}

	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := &AnalysisTask{
		ListingID:  listingID,
		RequestSeq: seq,
		done:       make(chan struct{}),
		cancel:     cancel,
	}

	go func() {
		defer close(task.done)
		defer cancel()
		task.msg, task.err = s.runAnalysis(taskCtx, listingID, seq)
	}()

	return task, nil
}

func (s *AssistantSession) beginAnalysis(listingID string) (uint64, error) {
	if strings.TrimSpace(listingID) == "" {
		return 0, fmt.Errorf("%w: empty listing id", domain.ErrListingNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isTyping {
		return 0, domain.ErrAssistantBusy
	}
	s.seq++
	s.isTyping = true
	s.isOpen = true
	s.chatCtx.SelectedListingID = listingID
	return s.seq, nil
}

func (s *AssistantSession) runAnalysis(ctx context.Context, listingID string, seq uint64) (domain.ChatMessage, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "AnalyzeProperty",
		"listing_id":  listingID,
		"request_seq": seq,
	})
	logger.Info("Use case started", nil)

	failure := domain.ChatMessage{
		Role:     domain.RoleAssistant,
		Content:  domain.AnalysisFailureMessage,
		Metadata: &domain.ChatMessageMetadata{ListingID: listingID, RequestSeq: seq},
	}

	listing, found, err := s.listings.FindByID(ctx, listingID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return s.abort(logger, ctxErr)
	}
	if err != nil || !found {
		if err == nil {
			err = domain.ErrListingNotFound
		}
		logger.Warn("Listing could not be resolved", port.Fields{"error": err.Error()})
		s.metrics.AssistantReply("analysis", port.ReplyFailed)
		return s.complete(failure), nil
	}

	analysis, err := s.generator.AnalyzeProperty(ctx, listing)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return s.abort(logger, ctxErr)
	}
	if err != nil || strings.TrimSpace(analysis) == "" {
		if err == nil {
			err = errors.New("empty analysis")
		}
		logger.Error("Text generator failed", err, nil)
		s.metrics.AssistantReply("analysis", port.ReplyFailed)
		return s.complete(failure), nil
	}
	s.metrics.AssistantReply("analysis", port.ReplyGenerated)

	msg := s.complete(domain.ChatMessage{
		Role:    domain.RoleAssistant,
		Content: domain.AnalysisMessage(listing.Title, analysis),
		Metadata: &domain.ChatMessageMetadata{
			ListingID:    listingID,
			AnalysisType: domain.AnalysisProperty,
			RequestSeq:   seq,
		},
	})
	logger.Info("Use case finished successfully", nil)
	return msg, nil
}

func (s *AssistantSession) abort(logger port.LoggerPort, err error) (domain.ChatMessage, error) {
	logger.Warn("Analysis cancelled", nil)
	s.mu.Lock()
	s.isTyping = false
	s.mu.Unlock()
	return domain.ChatMessage{}, err
}

func (s *AssistantSession) complete(msg domain.ChatMessage) domain.ChatMessage {
	msg.ID = s.newID()
	msg.Timestamp = s.now()
	s.finish(msg)
	return msg
}

// finish appends a reply and releases the typing slot. Replies to stale
// requests are still appended; RequestSeq lets readers tell them apart.
func (s *AssistantSession) finish(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.isTyping = false
}

func (s *AssistantSession) Open() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

func (s *AssistantSession) Close() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

func (s *AssistantSession) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
	return s.isOpen
}

func (s *AssistantSession) SetContext(u domain.ChatContextUpdate) domain.ChatContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.SelectedListingID != nil {
		s.chatCtx.SelectedListingID = *u.SelectedListingID
	}
	if u.UserLocation != nil {
		loc := *u.UserLocation
		s.chatCtx.UserLocation = &loc
	}
	return s.chatCtx
}

// ClearMessages resets the log to the welcome message.
func (s *AssistantSession) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []domain.ChatMessage{s.welcome()}
}

func (s *AssistantSession) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isTyping
}

func (s *AssistantSession) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *AssistantSession) Snapshot() AssistantSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return AssistantSnapshot{
		Messages: out,
		IsTyping: s.isTyping,
		IsOpen:   s.isOpen,
		Context:  s.chatCtx,
	}
}

// AnalysisTask is a handle on a background analysis.
type AnalysisTask struct {
	ListingID  string
	RequestSeq uint64

	done   chan struct{}
	cancel context.CancelFunc
	msg    domain.ChatMessage
	err    error
}

// Done is closed once the analysis message has been appended or the task was cancelled.
func (t *AnalysisTask) Done() <-chan struct{} {
	return t.done
}

func (t *AnalysisTask) Cancel() {
	t.cancel()
}

// Result is valid after Done is closed.
func (t *AnalysisTask) Result() (domain.ChatMessage, error) {
	<-t.done
	return t.msg, t.err
}

// Wait blocks until the task finishes or ctx ends.
func (t *AnalysisTask) Wait(ctx context.Context) (domain.ChatMessage, error) {
	select {
	case <-t.done:
		return t.msg, t.err
	case <-ctx.Done():
		return domain.ChatMessage{}, ctx.Err()
	}
}

type noopMetrics struct{}

func (noopMetrics) AssistantReply(string, string) {}
