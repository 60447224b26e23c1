package services

import (
	"context"
	"strings"
	"testing"

	"gabaychat/internal/config"
	"gabaychat/internal/models"
	"gabaychat/internal/observability"
	contextutils "gabaychat/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockTranslationClient mocks the upstream backend client.
type mockTranslationClient struct {
	mock.Mock
}

func (m *mockTranslationClient) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	args := m.Called(ctx, text, fromLang, toLang)
	return args.String(0), args.Error(1)
}

func (m *mockTranslationClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockTranslationClient) IsAvailable(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *mockTranslationClient) TestConnection(ctx context.Context) *models.ConnectionStatus {
	args := m.Called(ctx)
	return args.Get(0).(*models.ConnectionStatus)
}

func (m *mockTranslationClient) SaveMessage(ctx context.Context, text string) (*models.SavedMessage, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedMessage), args.Error(1)
}

func (m *mockTranslationClient) Messages(ctx context.Context, lang string) ([]models.Message, error) {
	args := m.Called(ctx, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func newWidgetService(client *mockTranslationClient) *WidgetService {
	cfg := &config.Config{}
	cfg.Widget.MaxMessageLength = 500
	cfg.Widget.RefreshDelays = []int{1000, 3000}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return NewWidgetService(cfg, client, logger)
}

func strPtr(s string) *string { return &s }

func TestWidgetToggle(t *testing.T) {
	svc := newWidgetService(&mockTranslationClient{})

	assert.False(t, svc.Snapshot("s1").Open)
	assert.True(t, svc.Toggle("s1"))
	assert.True(t, svc.Snapshot("s1").Open)
	assert.False(t, svc.Toggle("s1"))

	// Sessions are independent.
	assert.True(t, svc.Toggle("s2"))
	assert.False(t, svc.Snapshot("s1").Open)
}

func TestSendReconcilesOptimisticMessage(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(&models.SavedMessage{
		ID:          "srv-1",
		Text:        "hello",
		Translation: strPtr("kumusta"),
		Timestamp:   "2025-02-10T08:30:00Z",
	}, nil)

	svc := newWidgetService(client)

	msg, err := svc.Send(context.Background(), "s1", "hello", "fil")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "srv-1", msg.ID)
	assert.False(t, msg.Pending)
	require.NotNil(t, msg.Translation)
	assert.Equal(t, "kumusta", *msg.Translation)

	snap := svc.Snapshot("s1")
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "kumusta", snap.Messages[0].DisplayText)
	assert.False(t, snap.Sending)
	assert.Empty(t, snap.Error)

	// Server already provided a distinct translation, so no live call.
	client.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRejectsWhitespaceOnly(t *testing.T) {
	client := &mockTranslationClient{}
	svc := newWidgetService(client)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.Send(context.Background(), "s1", text, "fil")
		require.Error(t, err)
		assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))
	}

	assert.Empty(t, svc.Snapshot("s1").Messages)
	client.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything)
}

func TestSendRejectsOverlongMessage(t *testing.T) {
	client := &mockTranslationClient{}
	svc := newWidgetService(client)

	_, err := svc.Send(context.Background(), "s1", strings.Repeat("a", 501), "fil")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))
	assert.Empty(t, svc.Snapshot("s1").Messages)
}

func TestSendTrimsBeforeSaving(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(&models.SavedMessage{ID: "srv-1", Text: "hello"}, nil)
	client.On("Translate", mock.Anything, "hello", "", "fil").Return("kumusta", nil)

	svc := newWidgetService(client)

	msg, err := svc.Send(context.Background(), "s1", "  hello  ", "fil")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Original)
	client.AssertExpectations(t)
}

func TestSendFailureKeepsOptimisticEntry(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(nil,
		contextutils.WrapError(contextutils.ErrUpstreamUnavailable, "backend down"))

	svc := newWidgetService(client)

	msg, err := svc.Send(context.Background(), "s1", "hello", "fil")
	require.Error(t, err)
	require.NotNil(t, msg)
	assert.True(t, msg.Pending)
	assert.True(t, strings.HasPrefix(msg.ID, "local-"))

	snap := svc.Snapshot("s1")
	require.Len(t, snap.Messages, 1)
	assert.True(t, snap.Messages[0].Message.Pending)
	assert.Equal(t, "hello", snap.Messages[0].DisplayText)
	assert.NotEmpty(t, snap.Error)
	assert.False(t, snap.Sending)
}

func TestSendUsesLiveTranslationWhenServerOmitsOne(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(&models.SavedMessage{ID: "srv-1", Text: "hello"}, nil)
	client.On("Translate", mock.Anything, "hello", "", "fil").Return("kumusta", nil)

	svc := newWidgetService(client)

	_, err := svc.Send(context.Background(), "s1", "hello", "fil")
	require.NoError(t, err)

	snap := svc.Snapshot("s1")
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "kumusta", snap.Messages[0].DisplayText)
	// The live translation is a display cache, not a confirmed translation.
	assert.Nil(t, snap.Messages[0].Message.Translation)
}

func TestSendSwallowsLiveTranslationFailure(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(&models.SavedMessage{ID: "srv-1", Text: "hello"}, nil)
	client.On("Translate", mock.Anything, "hello", "", "fil").Return("",
		contextutils.WrapError(contextutils.ErrTranslationFailed, "model missing"))

	svc := newWidgetService(client)

	msg, err := svc.Send(context.Background(), "s1", "hello", "fil")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", msg.ID)

	snap := svc.Snapshot("s1")
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hello", snap.Messages[0].DisplayText)
	assert.Empty(t, snap.Error)
}

func TestSendRefusesConcurrentSend(t *testing.T) {
	client := &mockTranslationClient{}
	entered := make(chan struct{})
	release := make(chan struct{})
	client.On("SaveMessage", mock.Anything, "first").Run(func(args mock.Arguments) {
		close(entered)
		<-release
	}).Return(&models.SavedMessage{ID: "srv-1", Text: "first"}, nil)

	svc := newWidgetService(client)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(context.Background(), "s1", "first", "")
		done <- err
	}()

	<-entered
	_, err := svc.Send(context.Background(), "s1", "second", "")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrConflict))

	close(release)
	require.NoError(t, <-done)

	// Only the first message made it into the list.
	snap := svc.Snapshot("s1")
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "srv-1", snap.Messages[0].Message.ID)
}

func TestRefreshMergesByID(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(&models.SavedMessage{ID: "m1", Text: "hello"}, nil)
	client.On("Messages", mock.Anything, "fil").Return([]models.Message{
		{ID: "m1", Original: "hello", Translation: strPtr("kumusta")},
		{ID: "m2", Original: "goodbye", Translation: strPtr("paalam")},
	}, nil)

	svc := newWidgetService(client)

	_, err := svc.Send(context.Background(), "s1", "hello", "")
	require.NoError(t, err)

	// Flip m1 to original display before the refresh.
	_, err = svc.ToggleOriginal("s1", "m1")
	require.NoError(t, err)

	views, err := svc.Refresh(context.Background(), "s1", "fil")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "m1", views[0].Message.ID)
	assert.True(t, views[0].Message.ShowOriginal, "toggle survives refresh")
	assert.Equal(t, "hello", views[0].DisplayText)
	assert.Equal(t, "paalam", views[1].DisplayText)
}

func TestRefreshKeepsPendingLocalMessages(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("SaveMessage", mock.Anything, "hello").Return(nil,
		contextutils.WrapError(contextutils.ErrUpstreamUnavailable, "backend down"))
	client.On("Messages", mock.Anything, "fil").Return([]models.Message{
		{ID: "m1", Original: "earlier"},
	}, nil)

	svc := newWidgetService(client)

	_, _ = svc.Send(context.Background(), "s1", "hello", "")

	views, err := svc.Refresh(context.Background(), "s1", "fil")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "m1", views[0].Message.ID)
	assert.True(t, views[1].Message.Pending)
	assert.Equal(t, "hello", views[1].Message.Original)
}

func TestRefreshSkipsLocallyDeletedMessages(t *testing.T) {
	client := &mockTranslationClient{}
	serverList := []models.Message{
		{ID: "m1", Original: "hello"},
		{ID: "m2", Original: "goodbye"},
	}
	client.On("Messages", mock.Anything, "en").Return(serverList, nil)

	svc := newWidgetService(client)

	views, err := svc.Refresh(context.Background(), "s1", "en")
	require.NoError(t, err)
	require.Len(t, views, 2)

	require.NoError(t, svc.Delete("s1", "m1"))

	// The server still lists m1; the local delete must hold.
	views, err = svc.Refresh(context.Background(), "s1", "en")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "m2", views[0].Message.ID)
}

func TestRefreshFailureRecordsError(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("Messages", mock.Anything, "en").Return(nil,
		contextutils.WrapError(contextutils.ErrUpstreamUnavailable, "backend down"))

	svc := newWidgetService(client)

	_, err := svc.Refresh(context.Background(), "s1", "en")
	require.Error(t, err)
	assert.NotEmpty(t, svc.Snapshot("s1").Error)
}

func TestToggleOriginal(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("Messages", mock.Anything, "en").Return([]models.Message{
		{ID: "m1", Original: "hello", Translation: strPtr("kumusta")},
	}, nil)

	svc := newWidgetService(client)
	_, err := svc.Refresh(context.Background(), "s1", "en")
	require.NoError(t, err)

	show, err := svc.ToggleOriginal("s1", "m1")
	require.NoError(t, err)
	assert.True(t, show)
	assert.Equal(t, "hello", svc.Snapshot("s1").Messages[0].DisplayText)

	show, err = svc.ToggleOriginal("s1", "m1")
	require.NoError(t, err)
	assert.False(t, show)
	assert.Equal(t, "kumusta", svc.Snapshot("s1").Messages[0].DisplayText)

	_, err = svc.ToggleOriginal("s1", "missing")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestDeleteUnknownMessage(t *testing.T) {
	svc := newWidgetService(&mockTranslationClient{})

	err := svc.Delete("s1", "missing")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestClearResetsMessagesButNotPanelState(t *testing.T) {
	client := &mockTranslationClient{}
	client.On("Messages", mock.Anything, "en").Return([]models.Message{
		{ID: "m1", Original: "hello"},
		{ID: "m2", Original: "goodbye"},
	}, nil)

	svc := newWidgetService(client)
	svc.Toggle("s1")
	_, err := svc.Refresh(context.Background(), "s1", "en")
	require.NoError(t, err)
	require.NoError(t, svc.Delete("s1", "m1"))

	svc.Clear("s1")

	snap := svc.Snapshot("s1")
	assert.Empty(t, snap.Messages)
	assert.True(t, snap.Open, "clear does not close the panel")

	// Clear drops the suppress set, so a refresh shows everything again.
	views, err := svc.Refresh(context.Background(), "s1", "en")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestSnapshotCarriesRefreshDelays(t *testing.T) {
	svc := newWidgetService(&mockTranslationClient{})
	assert.Equal(t, []int{1000, 3000}, svc.Snapshot("s1").RefreshDelays)
}
