package models

// MoodResponse is the API view of a mood record with the breakdown inlined.
type MoodResponse struct {
	ID         string             `json:"id"`
	Category   string             `json:"category"`
	Score      int                `json:"score"`
	Note       string             `json:"note"`
	Origin     string             `json:"origin"`
	RecordedAt int64              `json:"recordedAt"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
}

// NewMoodResponse flattens a cache row for the API.
func NewMoodResponse(record MoodRecord) (MoodResponse, error) {
	weights, err := record.GetBreakdown()
	if err != nil {
		return MoodResponse{}, err
	}
	resp := MoodResponse{
		ID:         record.ID,
		Category:   string(record.Category),
		Score:      record.Score,
		Note:       record.Note,
		Origin:     string(record.Origin),
		RecordedAt: record.RecordedAt,
	}
	if len(weights) > 0 {
		resp.Breakdown = make(map[string]float64, len(weights))
		for c, w := range weights {
			resp.Breakdown[string(c)] = w
		}
	}
	return resp, nil
}

// MoodStat is one bucket of the group-by-category aggregate.
type MoodStat struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

// SyncStatusResponse reports per-collection backlog sizes.
type SyncStatusResponse struct {
	Online   bool             `json:"online"`
	Sweeping bool             `json:"sweeping"`
	Unsynced map[string]int64 `json:"unsynced"`
	Failed   map[string]int64 `json:"failed"`
}

// CrisisResource is one entry of the curated crisis-support list.
type CrisisResource struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone,omitempty"`
	URL         string `json:"url,omitempty"`
	Available   string `json:"available"`
}
