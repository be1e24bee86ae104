package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbook/internal/logger"
	"cabbook/internal/service"
)

// BlobHandler handles image uploads to blob storage.
type BlobHandler struct {
	blobService *service.BlobService
	log         logger.ILogger
}

// NewBlobHandler creates a new BlobHandler.
func NewBlobHandler(blobService *service.BlobService, log logger.ILogger) *BlobHandler {
	return &BlobHandler{blobService: blobService, log: log}
}

// UploadBlobRequest is the HTTP request body for an upload.
type UploadBlobRequest struct {
	Base64Image   string `json:"base64Image"`
	ContainerName string `json:"containerName"`
}

// DeleteBlobRequest is the HTTP request body for a delete.
type DeleteBlobRequest struct {
	BlobURL string `json:"blobUrl"`
}

// UploadBlobResponse is the response of an upload.
type UploadBlobResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// Upload handles POST /api/azure/blob/upload
func (h *BlobHandler) Upload(c *gin.Context) {
	var req UploadBlobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	url, err := h.blobService.Upload(c.Request.Context(), req.Base64Image, req.ContainerName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusCreated, UploadBlobResponse{Success: true, URL: url})
}

// Delete handles DELETE /api/azure/blob/delete
func (h *BlobHandler) Delete(c *gin.Context) {
	var req DeleteBlobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.blobService.Delete(c.Request.Context(), req.BlobURL); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, MessageResponse{Success: true, Message: "Blob deleted successfully"})
}
