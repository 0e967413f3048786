package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HavenGo/config"
	"HavenGo/models"
	"HavenGo/services"
	"HavenGo/store"
	"HavenGo/utils"
)

type JournalController struct {
	syncService *services.SyncService
	local       *store.LocalStore
}

func NewJournalController(syncService *services.SyncService, local *store.LocalStore) *JournalController {
	return &JournalController{syncService: syncService, local: local}
}

// SaveEntry creates or updates a journal entry. The local write decides the
// HTTP outcome; mirroring happens in the background.
func (jc *JournalController) SaveEntry(c *gin.Context) {
	var request models.JournalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	now := time.Now().UnixMilli()
	entry := models.JournalEntry{
		ID:        request.ID,
		Title:     request.Title,
		Content:   request.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if entry.ID == "" {
		entry.ID = utils.GenerateID()
	} else if existing, err := jc.local.GetJournal(entry.ID); err == nil {
		entry.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		config.Logger.Errorw("journal lookup failed", "error", err, "id", entry.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save journal entry"})
		return
	}

	if err := jc.syncService.SaveJournal(&entry); err != nil {
		config.Logger.Errorw("journal save failed", "error", err, "id", entry.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save journal entry"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListEntries serves from the cache, hydrating once from the remote store
// when the cache is empty and the device is online.
func (jc *JournalController) ListEntries(c *gin.Context) {
	entries, err := jc.syncService.LoadJournals(c.Request.Context())
	if err != nil {
		config.Logger.Errorw("journal list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load journal entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// DeleteEntry deletes locally and fires a best-effort remote delete.
func (jc *JournalController) DeleteEntry(c *gin.Context) {
	id := c.Param("id")
	if err := jc.syncService.DeleteJournal(id); err != nil {
		config.Logger.Errorw("journal delete failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete journal entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "journal entry deleted"})
}
