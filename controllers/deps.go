package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"handwriting-dataset-api/config"
	"handwriting-dataset-api/models"
	"handwriting-dataset-api/services"
	"handwriting-dataset-api/storage"
	"handwriting-dataset-api/store"

	"github.com/gin-gonic/gin"
)

// Shared collaborators, wired once at startup.
var (
	samples    store.SampleStore
	images     storage.ObjectStore
	recognizer *services.RecognitionService
	review     *services.ReviewService
	export     *services.ExportService
)

// Setup wires the controller package. Called from main (and from tests with
// in-memory collaborators).
func Setup(sampleStore store.SampleStore, imageStore storage.ObjectStore, recognition *services.RecognitionService) {
	samples = sampleStore
	images = imageStore
	recognizer = recognition
	review = services.NewReviewService(sampleStore, notifyContributor)
	export = services.NewExportService(sampleStore)
}

// notifyContributor emails the contributor about a review decision.
// Best-effort: failures are logged and never affect the review result.
func notifyContributor(sample models.Sample, decision models.SampleStatus) {
	if config.DB == nil {
		return
	}
	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", sample.ContributorID).First(&user).Error; err != nil {
		return
	}

	subject := "Your handwriting sample was " + string(decision)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your handwriting sample submitted on %s has been <strong>%s</strong>.</p><p>Thank you for contributing to the Pashto OCR dataset.</p>",
		user.Name, sample.CreatedAt.Format("2 January 2006"), decision,
	)
	if err := config.SendMail([]string{user.Email}, subject, body); err != nil {
		log.Printf("Warning: failed to send review notification to %s: %v", user.Email, err)
	}
}

// writeSampleError maps store/service errors to HTTP responses.
func writeSampleError(c *gin.Context, err error) {
	var invalid *store.InvalidTransitionError
	switch {
	case errors.Is(err, store.ErrSampleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sample not found"})
	case errors.Is(err, store.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corrected text must not be empty"})
	case errors.Is(err, store.ErrMissingImageKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Sample already reviewed",
			"status": invalid.Current,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
