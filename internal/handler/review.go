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

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviewService *service.ReviewService
	log           logger.ILogger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, log logger.ILogger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, log: log}
}

// CreateReviewRequest is the HTTP request body for reviewing a user.
type CreateReviewRequest struct {
	UserID  string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest is the HTTP request body for editing a review.
type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewerResponse is the public profile of a review's author.
type ReviewerResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// ReviewResponse is the HTTP representation of a review.
type ReviewResponse struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user"`
	ReviewerID string            `json:"reviewerId"`
	Reviewer   *ReviewerResponse `json:"reviewer,omitempty"`
	Rating     int               `json:"rating"`
	Comment    string            `json:"comment"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
}

// ReviewEnvelope wraps a single review.
type ReviewEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Review  ReviewResponse `json:"review"`
}

// ReviewListResponse is the list of reviews about one user.
type ReviewListResponse struct {
	Success bool             `json:"success"`
	Reviews []ReviewResponse `json:"reviews"`
}

// Create handles POST /api/reviews/create/:reviewerId
func (h *ReviewHandler) Create(c *gin.Context) {
	reviewerID, err := middleware.ResolveActor(c, c.Param("reviewerId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), service.CreateReviewRequest{
		ReviewerID: reviewerID,
		UserID:     req.UserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusCreated, ReviewEnvelope{Success: true, Message: "Review created", Review: toReviewResponse(review, nil)})
}

// ListByUser handles GET /api/reviews/user/:userId
func (h *ReviewHandler) ListByUser(c *gin.Context) {
	reviews, err := h.reviewService.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := ReviewListResponse{Success: true, Reviews: make([]ReviewResponse, 0, len(reviews))}
	for _, r := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(r.Review, r.Reviewer))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Update handles PATCH /api/reviews/update/:reviewId/:reviewerId
func (h *ReviewHandler) Update(c *gin.Context) {
	reviewerID, err := middleware.ResolveActor(c, c.Param("reviewerId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), service.UpdateReviewRequest{
		ReviewID:   c.Param("reviewId"),
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, ReviewEnvelope{Success: true, Message: "Review updated", Review: toReviewResponse(review, nil)})
}

// Delete handles DELETE /api/reviews/delete/:reviewId/:reviewerId
func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewerID, err := middleware.ResolveActor(c, c.Param("reviewerId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), c.Param("reviewId"), reviewerID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, MessageResponse{Success: true, Message: "Review deleted successfully"})
}

func toReviewResponse(r *domain.Review, reviewer *domain.VendorSummary) ReviewResponse {
	resp := ReviewResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
	if reviewer != nil {
		resp.Reviewer = &ReviewerResponse{ID: reviewer.ID, FullName: reviewer.FullName, Avatar: reviewer.Avatar}
	}
	return resp
}
