package models

import (
	"fmt"
	"time"
)

// DeviceAuthRequest pairs a device with the service and yields a device token.
type DeviceAuthRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
}

// ChatRequest is a single user turn. An empty ConversationID starts a new
// conversation.
type ChatRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message" binding:"required"`
}

// JournalRequest creates or updates a journal entry.
type JournalRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// MoodRequest records a manual mood entry.
type MoodRequest struct {
	ID         string    `json:"id"`
	Category   string    `json:"category" binding:"required"`
	Score      int       `json:"score" binding:"required"`
	Note       string    `json:"note"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Validate checks the closed category set and the score range, converts the
// timestamp to UTC, and returns the parsed category so callers never re-parse.
func (r *MoodRequest) Validate() (MoodCategory, error) {
	category, err := ParseMoodCategory(r.Category)
	if err != nil {
		return "", err
	}
	if r.Score < 1 || r.Score > 10 {
		return "", fmt.Errorf("score must be within [1,10], got %d", r.Score)
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}
	r.RecordedAt = r.RecordedAt.UTC()
	return category, nil
}

// AnalyzeDayRequest asks for a mood record derived from one day of chat.
type AnalyzeDayRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// ParseDate returns the UTC midnight of the requested day.
func (r *AnalyzeDayRequest) ParseDate() (time.Time, error) {
	day, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", r.Date)
	}
	return day.UTC(), nil
}
