package controllers

import (
	"net/http"
	"strconv"
	"time"

	"handwriting-dataset-api/services"
	"handwriting-dataset-api/store"
	"handwriting-dataset-api/utils"

	"github.com/gin-gonic/gin"
)

// ListSamples returns one page of samples for review (reviewer only).
// Query: status=all|pending|approved|rejected, page (zero-based), page_size.
func ListSamples(c *gin.Context) {
	filter, ok := store.ParseReviewFilter(c.DefaultQuery("status", "pending"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > services.MaxPageSize {
		pageSize = services.DefaultPageSize
	}

	list, total, err := review.List(filter, page, pageSize)
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
		"filter":      filter,
	})
}

// ApproveSample moves a pending sample to approved (reviewer only).
func ApproveSample(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("userID")

	sample, err := review.Approve(id, userID.(int))
	if err != nil {
		writeSampleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sample approved",
		"sample":  sampleView(c, *sample),
	})
}

// RejectSample moves a pending sample to rejected (reviewer only).
func RejectSample(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("userID")

	sample, err := review.Reject(id, userID.(int))
	if err != nil {
		writeSampleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sample rejected",
		"sample":  sampleView(c, *sample),
	})
}

// UpdateSampleText overwrites the corrected transcription (reviewer only).
// Works in any lifecycle state.
func UpdateSampleText(c *gin.Context) {
	id := c.Param("id")

	type editRequest struct {
		CorrectedText string `json:"corrected_text"`
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample, err := review.EditText(id, utils.SanitizeInput(req.CorrectedText))
	if err != nil {
		writeSampleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Text updated",
		"sample":  sampleView(c, *sample),
	})
}

// ExportDataset streams the approved samples as a downloadable dataset file.
// Query: format=json (default) or format=csv.
func ExportDataset(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case "json":
		data, err = export.JSON()
		contentType = "application/json"
	case "csv":
		data, err = export.CSV()
		contentType = "text/csv; charset=utf-8"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format must be json or csv"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export dataset"})
		return
	}

	filename := services.ExportFilename(format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
