package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCommunityStats returns aggregate dataset progress. Public endpoint.
func GetCommunityStats(c *gin.Context) {
	stats, err := samples.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
