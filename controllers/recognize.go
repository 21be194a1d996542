package controllers

import (
	"errors"
	"log"
	"net/http"

	"handwriting-dataset-api/services"

	"github.com/gin-gonic/gin"
)

type recognizeRequest struct {
	Image string `json:"image"`
}

// RecognizeImage forwards the captured image to the vision-language model and
// returns the draft transcription in the {success, text, message} contract
// shape. Upstream failure classes keep distinct status codes so the client
// can decide whether a retry makes sense.
func RecognizeImage(c *gin.Context) {
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"text":    "",
			"message": "Invalid request body",
		})
		return
	}

	result, err := recognizer.Recognize(c.Request.Context(), req.Image)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecognitionRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"text":    "",
				"message": "Rate limit exceeded. Please try again in a moment.",
			})
		case errors.Is(err, services.ErrRecognitionQuotaExhausted):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"success": false,
				"text":    "",
				"message": "AI credits exhausted. Please add credits to continue.",
			})
		case errors.Is(err, services.ErrRecognitionTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"success": false,
				"text":    "",
				"message": "Recognition timed out. Please try again.",
			})
		default:
			log.Printf("Recognition error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"text":    "",
				"message": "Recognition failed. Please try again.",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
