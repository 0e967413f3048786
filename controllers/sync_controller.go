package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"HavenGo/config"
	"HavenGo/services"
)

type SyncController struct {
	syncService *services.SyncService
}

func NewSyncController(syncService *services.SyncService) *SyncController {
	return &SyncController{syncService: syncService}
}

// GetStatus reports connectivity and per-collection backlog sizes.
func (sc *SyncController) GetStatus(c *gin.Context) {
	status, err := sc.syncService.Status()
	if err != nil {
		config.Logger.Errorw("sync status failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read sync status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// RunSweep triggers a reconciliation sweep manually. The sweep is
// fire-and-forget; a sweep already in progress absorbs the trigger.
func (sc *SyncController) RunSweep(c *gin.Context) {
	go sc.syncService.Sweep(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"message": "sweep triggered"})
}

// RetryFailed returns dead-lettered records to the sweep set.
func (sc *SyncController) RetryFailed(c *gin.Context) {
	count, err := sc.syncService.RetryFailed()
	if err != nil {
		config.Logger.Errorw("retry failed records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": count})
}
