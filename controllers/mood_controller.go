package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"HavenGo/config"
	"HavenGo/models"
	"HavenGo/services"
	"HavenGo/store"
	"HavenGo/utils"
)

type MoodController struct {
	syncService *services.SyncService
	local       *store.LocalStore
}

func NewMoodController(syncService *services.SyncService, local *store.LocalStore) *MoodController {
	return &MoodController{syncService: syncService, local: local}
}

// CreateEntry records a manual mood check-in.
func (mc *MoodController) CreateEntry(c *gin.Context) {
	var request models.MoodRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	category, err := request.Validate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	record := models.MoodRecord{
		ID:         request.ID,
		Category:   category,
		Score:      models.ClampScore(request.Score),
		Note:       request.Note,
		Origin:     models.OriginManual,
		RecordedAt: request.RecordedAt.UnixMilli(),
	}
	if record.ID == "" {
		record.ID = utils.GenerateID()
	}

	if err := mc.syncService.SaveMood(&record); err != nil {
		config.Logger.Errorw("mood save failed", "error", err, "id", record.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save mood entry"})
		return
	}

	response, err := models.NewMoodResponse(record)
	if err != nil {
		config.Logger.Errorw("mood response build failed", "error", err, "id", record.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save mood entry"})
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListEntries serves mood history from the cache, newest first.
func (mc *MoodController) ListEntries(c *gin.Context) {
	records, err := mc.syncService.LoadMoods(c.Request.Context())
	if err != nil {
		config.Logger.Errorw("mood list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mood entries"})
		return
	}

	responses := make([]models.MoodResponse, 0, len(records))
	for i := range records {
		response, err := models.NewMoodResponse(records[i])
		if err != nil {
			config.Logger.Warnw("skipping mood with bad breakdown", "id", records[i].ID, "error", err)
			continue
		}
		responses = append(responses, response)
	}
	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// GetStats returns the group-by-category aggregate.
func (mc *MoodController) GetStats(c *gin.Context) {
	stats, err := mc.local.MoodStats()
	if err != nil {
		config.Logger.Errorw("mood stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute mood stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// AnalyzeDay folds one day of chat into a mood record and persists it.
func (mc *MoodController) AnalyzeDay(c *gin.Context) {
	var request models.AnalyzeDayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	day, err := request.ParseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	from := day.UnixMilli()
	to := day.Add(24 * time.Hour).UnixMilli()
	messages, err := mc.local.ListMessagesBetween(from, to)
	if err != nil {
		config.Logger.Errorw("day analysis message load failed", "error", err, "date", request.Date)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages for analysis"})
		return
	}

	record, err := services.AnalyzeDay(messages, day)
	if err != nil {
		config.Logger.Errorw("day analysis failed", "error", err, "date", request.Date)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze day"})
		return
	}

	if err := mc.syncService.SaveMood(&record); err != nil {
		config.Logger.Errorw("day analysis save failed", "error", err, "id", record.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save mood entry"})
		return
	}

	response, err := models.NewMoodResponse(record)
	if err != nil {
		config.Logger.Errorw("mood response build failed", "error", err, "id", record.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze day"})
		return
	}
	c.JSON(http.StatusOK, response)
}

// DeleteEntry deletes a mood record locally with a best-effort remote delete.
func (mc *MoodController) DeleteEntry(c *gin.Context) {
	id := c.Param("id")
	if err := mc.syncService.DeleteMood(id); err != nil {
		config.Logger.Errorw("mood delete failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete mood entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "mood entry deleted"})
}
