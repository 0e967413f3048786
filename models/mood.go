package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MoodCategory is the closed set of emotional labels used both as classifier
// output and as a manual-entry choice.
type MoodCategory string

const (
	MoodExcellent  MoodCategory = "excellent"
	MoodHappy      MoodCategory = "happy"
	MoodGrateful   MoodCategory = "grateful"
	MoodHopeful    MoodCategory = "hopeful"
	MoodCalm       MoodCategory = "calm"
	MoodNeutral    MoodCategory = "neutral"
	MoodStressed   MoodCategory = "stressed"
	MoodAnxious    MoodCategory = "anxious"
	MoodAngry      MoodCategory = "angry"
	MoodSad        MoodCategory = "sad"
	MoodDistressed MoodCategory = "distressed"
)

// MoodCategories lists every valid category.
var MoodCategories = []MoodCategory{
	MoodExcellent, MoodHappy, MoodGrateful, MoodHopeful, MoodCalm,
	MoodNeutral, MoodStressed, MoodAnxious, MoodAngry, MoodSad, MoodDistressed,
}

// ParseMoodCategory rejects anything outside the closed set instead of
// letting an unrecognized string fall into a default branch.
func ParseMoodCategory(s string) (MoodCategory, error) {
	for _, c := range MoodCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown mood category %q", s)
}

// MoodOrigin distinguishes automatic chat-derived entries from explicit
// user-entered ones.
type MoodOrigin string

const (
	OriginChat   MoodOrigin = "chat"
	OriginManual MoodOrigin = "manual"
)

// ClampScore bounds an intensity score to the valid [1,10] range.
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// MoodRecord is the local cache row for a mood entry. Dates are epoch
// milliseconds; the emotion breakdown is a JSON text column.
type MoodRecord struct {
	ID           string       `gorm:"type:varchar(50);primaryKey" json:"id"`
	Category     MoodCategory `gorm:"type:varchar(20)" json:"category"`
	Score        int          `json:"score"`
	Note         string       `gorm:"type:text" json:"note"`
	Origin       MoodOrigin   `gorm:"type:varchar(20)" json:"origin"`
	RecordedAt   int64        `gorm:"index" json:"recordedAt"`
	Breakdown    string       `gorm:"type:text" json:"-"`
	SyncState    SyncState    `gorm:"index;default:0" json:"syncState"`
	SyncAttempts int          `gorm:"default:0" json:"-"`
}

func (MoodRecord) TableName() string {
	return "mood_records"
}

// SetBreakdown serializes the emotion-weight map into the cache column.
func (m *MoodRecord) SetBreakdown(weights map[MoodCategory]float64) error {
	if len(weights) == 0 {
		m.Breakdown = ""
		return nil
	}
	raw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	m.Breakdown = string(raw)
	return nil
}

// GetBreakdown deserializes the emotion-weight map. An empty column yields an
// empty map.
func (m *MoodRecord) GetBreakdown() (map[MoodCategory]float64, error) {
	weights := make(map[MoodCategory]float64)
	if m.Breakdown == "" {
		return weights, nil
	}
	if err := json.Unmarshal([]byte(m.Breakdown), &weights); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	return weights, nil
}

// MoodDocument is the remote document representation of a MoodRecord. Dates
// travel as ISO-8601 strings.
type MoodDocument struct {
	ID         string             `json:"id"`
	Category   string             `json:"category"`
	Score      int                `json:"score"`
	Note       string             `json:"note"`
	Origin     string             `json:"origin"`
	RecordedAt time.Time          `json:"recordedAt"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
}

// ToDocument converts the cache row into its remote document.
func (m *MoodRecord) ToDocument() (MoodDocument, error) {
	weights, err := m.GetBreakdown()
	if err != nil {
		return MoodDocument{}, err
	}
	doc := MoodDocument{
		ID:         m.ID,
		Category:   string(m.Category),
		Score:      m.Score,
		Note:       m.Note,
		Origin:     string(m.Origin),
		RecordedAt: time.UnixMilli(m.RecordedAt).UTC(),
	}
	if len(weights) > 0 {
		doc.Breakdown = make(map[string]float64, len(weights))
		for c, w := range weights {
			doc.Breakdown[string(c)] = w
		}
	}
	return doc, nil
}

// MoodRecordFromDocument converts a remote document back into a cache row.
// The row lands synced: it mirrors a confirmed remote copy by construction.
func MoodRecordFromDocument(doc MoodDocument) (MoodRecord, error) {
	category, err := ParseMoodCategory(doc.Category)
	if err != nil {
		return MoodRecord{}, err
	}
	record := MoodRecord{
		ID:         doc.ID,
		Category:   category,
		Score:      ClampScore(doc.Score),
		Note:       doc.Note,
		Origin:     MoodOrigin(doc.Origin),
		RecordedAt: doc.RecordedAt.UnixMilli(),
		SyncState:  SyncStateSynced,
	}
	if len(doc.Breakdown) > 0 {
		weights := make(map[MoodCategory]float64, len(doc.Breakdown))
		for name, w := range doc.Breakdown {
			c, err := ParseMoodCategory(name)
			if err != nil {
				return MoodRecord{}, err
			}
			weights[c] = w
		}
		if err := record.SetBreakdown(weights); err != nil {
			return MoodRecord{}, err
		}
	}
	return record, nil
}
