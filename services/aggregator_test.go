package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HavenGo/models"
)

func TestAnalyzeDay_EmptyListYieldsNeutralDefault(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	record, err := AnalyzeDay(nil, day)
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.MoodNeutral, record.Category)
	assert.Equal(t, 5, record.Score)
	assert.Equal(t, models.OriginChat, record.Origin)
	assert.Equal(t, day.UnixMilli(), record.RecordedAt)
	assert.Empty(t, record.Breakdown)
}

func TestAnalyzeDay_AssistantOnlyYieldsNeutralDefault(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	messages := []models.ChatMessage{
		{ID: "a1", Role: models.RoleAssistant, Content: "That sounds wonderful, I'm thrilled for you"},
		{ID: "a2", Role: models.RoleSystem, Content: "session started"},
	}

	record, err := AnalyzeDay(messages, day)
	require.NoError(t, err)

	assert.Equal(t, models.MoodNeutral, record.Category)
	assert.Equal(t, 5, record.Score)
	assert.Equal(t, models.OriginChat, record.Origin)
	assert.Empty(t, record.Breakdown)
}

func TestAnalyzeDay_FoldsUserTurnsOnly(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	messages := []models.ChatMessage{
		{ID: "m1", Role: models.RoleUser, Content: "I am so happy and grateful today"},
		{ID: "m2", Role: models.RoleAssistant, Content: "That's amazing, truly wonderful"},
		{ID: "m3", Role: models.RoleUser, Content: "Looking forward to seeing my friends"},
	}

	record, err := AnalyzeDay(messages, day)
	require.NoError(t, err)

	assert.Equal(t, models.OriginChat, record.Origin)
	assert.Equal(t, "chat analysis of 2 messages", record.Note)
	assert.GreaterOrEqual(t, record.Score, 7)

	weights, err := record.GetBreakdown()
	require.NoError(t, err)
	assert.Greater(t, weights[models.MoodHappy], 0.0)
	assert.Greater(t, weights[models.MoodGrateful], 0.0)
	// The assistant's "amazing ... wonderful" must not leak into the fold.
	assert.NotContains(t, weights, models.MoodExcellent)
}
