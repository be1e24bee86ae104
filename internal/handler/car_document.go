package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/middleware"
	"cabbook/internal/service"
)

// CarDocumentHandler handles HTTP requests for KYC documents.
type CarDocumentHandler struct {
	docService *service.CarDocumentService
	log        logger.ILogger
}

// NewCarDocumentHandler creates a new CarDocumentHandler.
func NewCarDocumentHandler(docService *service.CarDocumentService, log logger.ILogger) *CarDocumentHandler {
	return &CarDocumentHandler{docService: docService, log: log}
}

// FileRefPayload is one uploaded file.
type FileRefPayload struct {
	URL string `json:"url"`
}

// PhotoSetPayload is a group of car photos.
type PhotoSetPayload struct {
	URL []string `json:"url"`
}

// CarDocumentsPayload is a full document bundle.
type CarDocumentsPayload struct {
	DrivingLicense []string          `json:"drivingLicense"`
	RC             []FileRefPayload  `json:"rc"`
	Insurance      []FileRefPayload  `json:"insurance"`
	Aadhaar        []string          `json:"aadhaar"`
	PollutionPaper []FileRefPayload  `json:"pollutionPaper"`
	CarPhoto       []PhotoSetPayload `json:"carPhoto"`
}

// CreateCarDocumentsRequest is the HTTP request body for uploading documents.
type CreateCarDocumentsRequest struct {
	UserID    string               `json:"userId"`
	Documents *CarDocumentsPayload `json:"documents"`
}

// UpdateCarDocumentsRequest replaces only the lists that are present.
type UpdateCarDocumentsRequest struct {
	DrivingLicense *[]string          `json:"drivingLicense"`
	RC             *[]FileRefPayload  `json:"rc"`
	Insurance      *[]FileRefPayload  `json:"insurance"`
	Aadhaar        *[]string          `json:"aadhaar"`
	PollutionPaper *[]FileRefPayload  `json:"pollutionPaper"`
	CarPhoto       *[]PhotoSetPayload `json:"carPhoto"`
}

// CarDocumentResponse is the HTTP representation of a document bundle.
type CarDocumentResponse struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	CarDocumentsPayload
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// CarDocumentEnvelope wraps a document bundle.
type CarDocumentEnvelope struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Documents *CarDocumentResponse `json:"documents,omitempty"`
}

// Create handles POST /api/car-docs/create
func (h *CarDocumentHandler) Create(c *gin.Context) {
	var req CreateCarDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Documents == nil {
		respondBadRequest(c, "user id and documents are required")
		return
	}

	userID, err := middleware.ResolveActor(c, req.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	doc, err := h.docService.Create(c.Request.Context(), userID, req.Documents.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusCreated, CarDocumentEnvelope{
		Success:   true,
		Message:   "Documents uploaded successfully",
		Documents: toCarDocumentResponse(doc),
	})
}

// GetByUser handles GET /api/car-docs/get-user/:userId
func (h *CarDocumentHandler) GetByUser(c *gin.Context) {
	doc, err := h.docService.GetByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, CarDocumentEnvelope{
		Success:   true,
		Message:   "Documents fetched successfully",
		Documents: toCarDocumentResponse(doc),
	})
}

// Update handles PATCH /api/car-docs/update/:userId
func (h *CarDocumentHandler) Update(c *gin.Context) {
	userID, err := middleware.ResolveActor(c, c.Param("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req UpdateCarDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	patch := service.CarDocumentPatch{
		DrivingLicense: req.DrivingLicense,
		Aadhaar:        req.Aadhaar,
	}
	if req.RC != nil {
		v := toFileRefs(*req.RC)
		patch.RC = &v
	}
	if req.Insurance != nil {
		v := toFileRefs(*req.Insurance)
		patch.Insurance = &v
	}
	if req.PollutionPaper != nil {
		v := toFileRefs(*req.PollutionPaper)
		patch.PollutionPaper = &v
	}
	if req.CarPhoto != nil {
		v := toPhotoSets(*req.CarPhoto)
		patch.CarPhoto = &v
	}

	doc, err := h.docService.Update(c.Request.Context(), userID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, CarDocumentEnvelope{
		Success:   true,
		Message:   "Documents updated successfully",
		Documents: toCarDocumentResponse(doc),
	})
}

// Delete handles DELETE /api/car-docs/delete/:userId
func (h *CarDocumentHandler) Delete(c *gin.Context) {
	userID, err := middleware.ResolveActor(c, c.Param("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.docService.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, MessageResponse{Success: true, Message: "Documents deleted successfully"})
}

func (p CarDocumentsPayload) toInput() service.CarDocumentInput {
	return service.CarDocumentInput{
		DrivingLicense: p.DrivingLicense,
		RC:             toFileRefs(p.RC),
		Insurance:      toFileRefs(p.Insurance),
		Aadhaar:        p.Aadhaar,
		PollutionPaper: toFileRefs(p.PollutionPaper),
		CarPhoto:       toPhotoSets(p.CarPhoto),
	}
}

func toFileRefs(in []FileRefPayload) []domain.FileRef {
	out := make([]domain.FileRef, 0, len(in))
	for _, f := range in {
		out = append(out, domain.FileRef{URL: f.URL})
	}
	return out
}

func toPhotoSets(in []PhotoSetPayload) []domain.PhotoSet {
	out := make([]domain.PhotoSet, 0, len(in))
	for _, p := range in {
		out = append(out, domain.PhotoSet{URL: p.URL})
	}
	return out
}

func toCarDocumentResponse(doc *domain.CarDocument) *CarDocumentResponse {
	resp := &CarDocumentResponse{
		ID:     doc.ID,
		UserID: doc.UserID,
		CarDocumentsPayload: CarDocumentsPayload{
			DrivingLicense: nonNil(doc.DrivingLicense),
			RC:             make([]FileRefPayload, 0, len(doc.RC)),
			Insurance:      make([]FileRefPayload, 0, len(doc.Insurance)),
			Aadhaar:        nonNil(doc.Aadhaar),
			PollutionPaper: make([]FileRefPayload, 0, len(doc.PollutionPaper)),
			CarPhoto:       make([]PhotoSetPayload, 0, len(doc.CarPhoto)),
		},
	}
	for _, f := range doc.RC {
		resp.RC = append(resp.RC, FileRefPayload{URL: f.URL})
	}
	for _, f := range doc.Insurance {
		resp.Insurance = append(resp.Insurance, FileRefPayload{URL: f.URL})
	}
	for _, f := range doc.PollutionPaper {
		resp.PollutionPaper = append(resp.PollutionPaper, FileRefPayload{URL: f.URL})
	}
	for _, p := range doc.CarPhoto {
		resp.CarPhoto = append(resp.CarPhoto, PhotoSetPayload{URL: nonNil(p.URL)})
	}
	if !doc.CreatedAt.IsZero() {
		resp.CreatedAt = doc.CreatedAt.Format(time.RFC3339)
		resp.UpdatedAt = doc.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
