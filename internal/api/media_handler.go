package api

import (
	"errors"
	"fmt"
	"net/http"

	"recoverly/physio-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MediaHandler hands out presigned URLs for exercise demonstration videos.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"` // e.g., "video/mp4"
}

// RequestUploadURL returns a presigned PUT URL for a new demo video.
func (h *MediaHandler) RequestUploadURL(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.mediaService.RequestDemoUploadURL(c.Request.Context(), ownerUID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDownloadURL returns a presigned GET URL for a stored demo video.
func (h *MediaHandler) GetDownloadURL(c *gin.Context) {
	objectKey := c.Query("key")
	if objectKey == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'key' is required")
		return
	}

	url, err := h.mediaService.DemoDownloadURL(c.Request.Context(), objectKey)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": url, "objectKey": objectKey})
}

// DeleteVideo removes a stored demo video owned by the caller.
func (h *MediaHandler) DeleteVideo(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'key' is required")
		return
	}

	if err := h.mediaService.DeleteDemo(c.Request.Context(), ownerUID, objectKey); err != nil {
		if errors.Is(err, service.ErrNotKeyOwner) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete video")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
