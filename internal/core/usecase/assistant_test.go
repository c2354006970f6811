package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

func newTestAssistant(gen *fakeGenerator, repo *fakeRepo) (*AssistantSession, *fakeMetrics) {
	metrics := &fakeMetrics{}
	return NewAssistantSession(gen, repo, metrics), metrics
}

func TestAssistantSession_StartsWithWelcome(t *testing.T) {
	s, _ := newTestAssistant(&fakeGenerator{}, newFakeRepo())

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, domain.WelcomeMessageID, snap.Messages[0].ID)
	assert.Equal(t, domain.RoleAssistant, snap.Messages[0].Role)
	assert.False(t, snap.IsTyping)
	assert.False(t, snap.IsOpen)
}

func TestAssistantSession_SendMessage(t *testing.T) {
	var gotCtx domain.ChatContext
	gen := &fakeGenerator{chat: func(msg string, c domain.ChatContext) (string, error) {
		gotCtx = c
		return "reply to " + msg, nil
	}}
	s, metrics := newTestAssistant(gen, newFakeRepo())
	s.SetContext(domain.ChatContextUpdate{SelectedListingID: ptr("3")})

	reply, err := s.SendMessage(context.Background(), "  is it quiet?  ")
	require.NoError(t, err)

	assert.Equal(t, "reply to is it quiet?", reply.Content)
	assert.Equal(t, "3", gotCtx.SelectedListingID)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.RoleUser, msgs[1].Role)
	assert.Equal(t, "is it quiet?", msgs[1].Content)
	assert.Equal(t, uint64(1), msgs[1].Metadata.RequestSeq)
	assert.Equal(t, uint64(1), msgs[2].Metadata.RequestSeq)
	assert.NotEqual(t, msgs[1].ID, msgs[2].ID)
	assert.False(t, s.IsTyping())
	assert.Equal(t, []string{"chat:" + port.ReplyGenerated}, metrics.Replies())
}

func TestAssistantSession_SendMessageRejectsBlank(t *testing.T) {
	s, _ := newTestAssistant(&fakeGenerator{}, newFakeRepo())

	_, err := s.SendMessage(context.Background(), " \n\t")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Len(t, s.Messages(), 1)
}

func TestAssistantSession_GeneratorFailureBecomesFixedReply(t *testing.T) {
	tests := []struct {
		name string
		chat func(string, domain.ChatContext) (string, error)
	}{
		{"error", func(string, domain.ChatContext) (string, error) { return "", errBackend }},
		{"blank reply", func(string, domain.ChatContext) (string, error) { return "   ", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, metrics := newTestAssistant(&fakeGenerator{chat: tt.chat}, newFakeRepo())

			reply, err := s.SendMessage(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, domain.ChatFailureMessage, reply.Content)
			assert.Len(t, s.Messages(), 3)
			assert.False(t, s.IsTyping())
			assert.Equal(t, []string{"chat:" + port.ReplyFailed}, metrics.Replies())
		})
	}
}

func TestAssistantSession_RejectsWhileTyping(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s, _ := newTestAssistant(gen, newFakeRepo())

	done := make(chan error, 1)
	go func() {
		_, err := s.SendMessage(context.Background(), "first")
		done <- err
	}()
	<-gen.started
	assert.True(t, s.IsTyping())

	_, err := s.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrAssistantBusy)

	_, err = s.StartAnalysis(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrAssistantBusy)

	close(gen.gate)
	require.NoError(t, <-done)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, "echo: first", msgs[2].Content)
}

func TestAssistantSession_AnalyzeProperty(t *testing.T) {
	s, metrics := newTestAssistant(&fakeGenerator{}, newFakeRepo())

	msg, err := s.AnalyzeProperty(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, domain.AnalysisMessage("Modern Loft in SoHo", "analysis of Modern Loft in SoHo"), msg.Content)
	require.NotNil(t, msg.Metadata)
	assert.Equal(t, "1", msg.Metadata.ListingID)
	assert.Equal(t, domain.AnalysisProperty, msg.Metadata.AnalysisType)
	assert.Equal(t, uint64(1), msg.Metadata.RequestSeq)

	snap := s.Snapshot()
	assert.True(t, snap.IsOpen, "analysis opens the panel")
	assert.False(t, snap.IsTyping)
	assert.Equal(t, "1", snap.Context.SelectedListingID)
	assert.Len(t, snap.Messages, 2)
	assert.Equal(t, []string{"analysis:" + port.ReplyGenerated}, metrics.Replies())
}

func TestAssistantSession_AnalyzePropertyFailures(t *testing.T) {
	tests := []struct {
		name      string
		listingID string
		repoErr   error
		analyze   func(domain.Listing) (string, error)
	}{
		{name: "unknown listing", listingID: "404"},
		{name: "repository error", listingID: "1", repoErr: errBackend},
		{name: "generator error", listingID: "1", analyze: func(domain.Listing) (string, error) { return "", errBackend }},
		{name: "blank analysis", listingID: "1", analyze: func(domain.Listing) (string, error) { return "", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.err = tt.repoErr
			s, metrics := newTestAssistant(&fakeGenerator{analyze: tt.analyze}, repo)

			msg, err := s.AnalyzeProperty(context.Background(), tt.listingID)
			require.NoError(t, err)
			assert.Equal(t, domain.AnalysisFailureMessage, msg.Content)
			assert.Equal(t, tt.listingID, msg.Metadata.ListingID)
			assert.Empty(t, msg.Metadata.AnalysisType)
			assert.False(t, s.IsTyping())
			assert.Len(t, s.Messages(), 2)
			assert.Equal(t, []string{"analysis:" + port.ReplyFailed}, metrics.Replies())
		})
	}
}

func TestAssistantSession_AnalyzeRejectsEmptyID(t *testing.T) {
	s, _ := newTestAssistant(&fakeGenerator{}, newFakeRepo())

	_, err := s.AnalyzeProperty(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	assert.False(t, s.IsTyping())
}

func TestAssistantSession_StartAnalysisInBackground(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s, _ := newTestAssistant(gen, newFakeRepo())

	task, err := s.StartAnalysis(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2", task.ListingID)

	<-gen.started
	assert.True(t, s.IsTyping())
	close(gen.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "Luxury Penthouse")
	assert.Len(t, s.Messages(), 2)
}

func TestAssistantSession_CancelledAnalysisAppendsNothing(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	s, metrics := newTestAssistant(gen, newFakeRepo())

	task, err := s.StartAnalysis(context.Background(), "1")
	require.NoError(t, err)
	<-gen.started

	task.Cancel()
	_, err = task.Result()
	assert.ErrorIs(t, err, context.Canceled)

	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.IsTyping())
	assert.Empty(t, metrics.Replies())
}

func TestAssistantSession_RequestSeqGrows(t *testing.T) {
	s, _ := newTestAssistant(&fakeGenerator{}, newFakeRepo())

	_, err := s.SendMessage(context.Background(), "one")
	require.NoError(t, err)
	msg, err := s.AnalyzeProperty(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), msg.Metadata.RequestSeq)

	reply, err := s.SendMessage(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), reply.Metadata.RequestSeq)
}

func TestAssistantSession_PanelAndLog(t *testing.T) {
	s, _ := newTestAssistant(&fakeGenerator{}, newFakeRepo())

	assert.True(t, s.Toggle())
	assert.False(t, s.Toggle())
	s.Open()
	assert.True(t, s.Snapshot().IsOpen)
	s.Close()
	assert.False(t, s.Snapshot().IsOpen)

	_, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	s.ClearMessages()
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.WelcomeMessage, msgs[0].Content)

	loc := domain.GeoPoint{Latitude: 40.7, Longitude: -74}
	got := s.SetContext(domain.ChatContextUpdate{UserLocation: &loc})
	loc.Latitude = 0
	require.NotNil(t, got.UserLocation)
	assert.Equal(t, 40.7, got.UserLocation.Latitude, "context keeps its own copy")
}
