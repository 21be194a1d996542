package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"handwriting-dataset-api/models"
	"handwriting-dataset-api/store"
	"handwriting-dataset-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxImageSize   = 10 << 20 // 10MB, matches the client-side cap
	imageURLExpiry = time.Hour
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// CreateSample accepts a multipart submission: the captured image plus the
// contributor-verified transcription. The sample starts in pending state.
func CreateSample(c *gin.Context) {
	userID, _ := c.Get("userID")

	correctedText := utils.SanitizeInput(c.PostForm("corrected_text"))
	if correctedText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corrected text is required"})
		return
	}
	originalText := utils.SanitizeInput(c.PostForm("original_text"))

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be smaller than 10MB"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG and PNG images are accepted"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer src.Close()

	sampleID := uuid.NewString()
	imageKey := fmt.Sprintf("samples/%s%s", sampleID, ext)

	if err := images.Put(c.Request.Context(), imageKey, src, file.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	sample := models.Sample{
		SampleID:      sampleID,
		ImageKey:      imageKey,
		CorrectedText: correctedText,
		ContributorID: userID.(int),
	}
	if originalText != "" {
		sample.OriginalText = &originalText
	}

	if err := samples.Create(&sample); err != nil {
		// Keep storage consistent with the store on failure.
		_ = images.Delete(c.Request.Context(), imageKey)
		writeSampleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sample submitted for review",
		"sample":  sample,
	})
}

// GetMySamples lists the calling contributor's own submissions.
func GetMySamples(c *gin.Context) {
	userID, _ := c.Get("userID")

	filter, ok := store.ParseReviewFilter(c.Query("status"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	list, total, err := samples.List(store.ListQuery{
		Filter:        filter,
		ContributorID: userID.(int),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch samples"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"samples":     sampleViews(c, list),
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetSample returns one sample. Contributors only see their own; reviewers
// see everything.
func GetSample(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	sample, err := samples.GetByID(id)
	if err != nil {
		writeSampleError(c, err)
		return
	}

	if roleID.(int) != models.RoleReviewer && sample.ContributorID != userID.(int) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sample": sampleView(c, *sample)})
}

// GetMyStats returns the calling contributor's sample counts.
func GetMyStats(c *gin.Context) {
	userID, _ := c.Get("userID")

	counts, err := samples.ContributorStats(userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": counts})
}

type sampleResponse struct {
	models.Sample
	ImageURL string `json:"image_url,omitempty"`
}

func sampleView(c *gin.Context, sample models.Sample) sampleResponse {
	view := sampleResponse{Sample: sample}
	if images != nil {
		if url, err := images.URL(c.Request.Context(), sample.ImageKey, imageURLExpiry); err == nil {
			view.ImageURL = url
		}
	}
	return view
}

func sampleViews(c *gin.Context, list []models.Sample) []sampleResponse {
	views := make([]sampleResponse, 0, len(list))
	for _, sample := range list {
		views = append(views, sampleView(c, sample))
	}
	return views
}
