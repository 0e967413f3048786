package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"HavenGo/models"
)

type ResourceController struct{}

func NewResourceController() *ResourceController {
	return &ResourceController{}
}

// Served from memory so the list works with no connectivity at all.
var crisisResources = []models.CrisisResource{
	{
		Name:        "988 Suicide & Crisis Lifeline",
		Description: "Free, confidential support for people in distress",
		Phone:       "988",
		URL:         "https://988lifeline.org",
		Available:   "24/7",
	},
	{
		Name:        "Crisis Text Line",
		Description: "Text HOME to reach a volunteer crisis counselor",
		Phone:       "741741",
		URL:         "https://www.crisistextline.org",
		Available:   "24/7",
	},
	{
		Name:        "SAMHSA National Helpline",
		Description: "Treatment referral and information service",
		Phone:       "1-800-662-4357",
		URL:         "https://www.samhsa.gov/find-help/national-helpline",
		Available:   "24/7",
	},
	{
		Name:        "International Association for Suicide Prevention",
		Description: "Directory of crisis centers outside the US",
		URL:         "https://www.iasp.info/resources/Crisis_Centres",
		Available:   "varies",
	},
}

// GetCrisisResources returns the curated crisis-support list.
func (rc *ResourceController) GetCrisisResources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": crisisResources})
}
