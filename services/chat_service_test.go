package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"HavenGo/models"
)

// scriptedModel streams a fixed chunk sequence through the streaming callback
// and records the messages it was handed.
type scriptedModel struct {
	chunks   []string
	received []llms.MessageContent
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.received = messages
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	for _, chunk := range m.chunks {
		if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: strings.Join(m.chunks, "")}},
	}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return strings.Join(m.chunks, ""), nil
}

type failingModel struct{}

func (failingModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, errors.New("upstream unavailable")
}

func (failingModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", errors.New("upstream unavailable")
}

func TestCoerceHistory_DropsSystemAndLeadingAssistant(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "session started"},
		{Role: models.RoleAssistant, Content: "welcome back"},
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello, how are you?"},
	}

	coerced := CoerceHistory(history)

	assert.Len(t, coerced, 2)
	assert.Equal(t, models.RoleUser, coerced[0].Role)
	assert.Equal(t, "hi", coerced[0].Content)
	assert.Equal(t, models.RoleAssistant, coerced[1].Role)
}

func TestCoerceHistory_MergesConsecutiveSameRole(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleUser, Content: "second"},
		{Role: models.RoleAssistant, Content: "reply a"},
		{Role: models.RoleAssistant, Content: "reply b"},
		{Role: models.RoleUser, Content: "third"},
	}

	coerced := CoerceHistory(history)

	assert.Len(t, coerced, 3)
	assert.Equal(t, "first\nsecond", coerced[0].Content)
	assert.Equal(t, "reply a\nreply b", coerced[1].Content)
	assert.Equal(t, "third", coerced[2].Content)
}

func TestCoerceHistory_EmptyAndAllSystem(t *testing.T) {
	assert.Empty(t, CoerceHistory(nil))
	assert.Empty(t, CoerceHistory([]models.ChatMessage{
		{Role: models.RoleSystem, Content: "a"},
		{Role: models.RoleSystem, Content: "b"},
	}))
}

func TestBuildTitle(t *testing.T) {
	assert.Equal(t, "How do I calm down?", BuildTitle("  How do I calm down?  "))
	assert.Equal(t, "New conversation", BuildTitle("   "))

	long := strings.Repeat("a", 60)
	title := BuildTitle(long)
	assert.Equal(t, strings.Repeat("a", 40)+"...", title)

	// Truncation counts runes, not bytes.
	wide := strings.Repeat("情", 50)
	assert.Equal(t, strings.Repeat("情", 40)+"...", BuildTitle(wide))
}

func TestGenerateCompanionResponse_StreamsModelChunks(t *testing.T) {
	model := &scriptedModel{chunks: []string{"You", " are", " heard."}}
	service := NewChatService(&CompanionClient{Chat: model}, NewOfflineResponder())

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello, how are you?"},
	}
	stream := service.GenerateCompanionResponse(context.Background(), history, "I had a rough day")

	var builder strings.Builder
	for chunk := range stream {
		builder.WriteString(chunk)
	}
	service.Wait()

	assert.Equal(t, "You are heard.", builder.String())

	// System prompt first, then the coerced history, then the new user turn.
	require.Len(t, model.received, 4)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.received[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.received[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, model.received[2].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.received[3].Role)
}

func TestGenerateCompanionResponse_AbandonedStreamDoesNotLeak(t *testing.T) {
	model := &scriptedModel{chunks: []string{"one", "two", "three"}}
	service := NewChatService(&CompanionClient{Chat: model}, NewOfflineResponder())

	ctx, cancel := context.WithCancel(context.Background())
	stream := service.GenerateCompanionResponse(ctx, nil, "tell me something")

	// Read a single chunk, then walk away mid-stream.
	<-stream
	cancel()

	done := make(chan struct{})
	go func() {
		service.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("generation goroutine still blocked after the stream was abandoned")
	}
}

func TestGenerateCompanionResponse_ModelErrorFallsBack(t *testing.T) {
	responder := NewOfflineResponder()
	service := NewChatService(&CompanionClient{Chat: failingModel{}}, responder)

	message := "I feel anxious about everything"
	stream := service.GenerateCompanionResponse(context.Background(), nil, message)

	var builder strings.Builder
	for chunk := range stream {
		builder.WriteString(chunk)
	}
	service.Wait()

	assert.Equal(t, responder.Respond(message), builder.String())
}

func TestGenerateCompanionResponse_NilClientFallsBack(t *testing.T) {
	responder := NewOfflineResponder()
	service := NewChatService(nil, responder)

	message := "I feel anxious about everything"
	stream := service.GenerateCompanionResponse(context.Background(), nil, message)

	var builder strings.Builder
	for chunk := range stream {
		builder.WriteString(chunk)
	}
	service.Wait()

	assert.Equal(t, responder.Respond(message), builder.String())
}
