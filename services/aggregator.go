package services

import (
	"fmt"
	"strings"
	"time"

	"HavenGo/models"
	"HavenGo/utils"
)

// AnalyzeDay folds one day of chat messages into a single mood record.
// Only user-authored turns count; assistant and system turns are ignored.
// With nothing to classify the day collapses to the neutral default. No
// deduplication and no recency weighting: the qualifying texts are joined
// with single spaces in insertion order and classified once.
func AnalyzeDay(messages []models.ChatMessage, day time.Time) (models.MoodRecord, error) {
	var texts []string
	for _, message := range messages {
		if message.Role == models.RoleUser {
			texts = append(texts, message.Content)
		}
	}

	record := models.MoodRecord{
		ID:         utils.GenerateID(),
		Origin:     models.OriginChat,
		RecordedAt: day.UTC().UnixMilli(),
		SyncState:  models.SyncStateUnsynced,
	}

	if len(texts) == 0 {
		record.Category = models.MoodNeutral
		record.Score = 5
		record.Note = "chat analysis"
		return record, nil
	}

	result := AnalyzeMood(strings.Join(texts, " "))

	record.Category = result.Mood
	record.Score = result.Score
	record.Note = fmt.Sprintf("chat analysis of %d messages", len(texts))
	if err := record.SetBreakdown(result.Emotions); err != nil {
		return models.MoodRecord{}, err
	}
	return record, nil
}
