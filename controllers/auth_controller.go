package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"HavenGo/config"
	"HavenGo/models"
	"HavenGo/utils"
)

type AuthController struct {
	jwtManager *utils.JWTManager
}

func NewAuthController(jwtManager *utils.JWTManager) *AuthController {
	return &AuthController{jwtManager: jwtManager}
}

// PairDevice issues the device token the app uses on every other endpoint.
func (a *AuthController) PairDevice(c *gin.Context) {
	var request models.DeviceAuthRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	token, err := a.jwtManager.GenerateToken(request.DeviceID)
	if err != nil {
		config.Logger.Errorw("failed to issue device token", "error", err, "deviceId", request.DeviceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue device token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"deviceId": request.DeviceID,
	})
}
