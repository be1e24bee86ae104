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

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *service.UserService
	log         logger.ILogger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, log logger.ILogger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// OnboardingRequest starts registration or logs a verified user in.
type OnboardingRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"pass"`
}

// VerifyRequest carries the code sent to a mobile number.
type VerifyRequest struct {
	MobileNumber string `json:"number"`
	VerifyCode   string `json:"verifyCode"`
}

// AuthFormData holds the registration or login form.
type AuthFormData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthRequest is the HTTP request body of the combined register/login call.
type AuthRequest struct {
	UserID    string               `json:"userId"`
	FormData  AuthFormData         `json:"formData"`
	Documents *CarDocumentsPayload `json:"documents"`
}

// UpdateProfileRequest holds the profile fields to change.
type UpdateProfileRequest struct {
	FullName     *string `json:"fullName"`
	MobileNumber *string `json:"mobileNumber"`
	Avatar       *string `json:"avatar"`
}

// UserResponse is the HTTP representation of a user. Secrets are never sent.
type UserResponse struct {
	ID                 string `json:"id"`
	Avatar             string `json:"avatar,omitempty"`
	FullName           string `json:"fullName"`
	Email              string `json:"email,omitempty"`
	MobileNumber       string `json:"mobileNumber"`
	Role               string `json:"role,omitempty"`
	IsVerified         bool   `json:"isVerified"`
	IsDocumentVerified bool   `json:"isDocumentVerified"`
	CreatedAt          string `json:"createdAt,omitempty"`
	UpdatedAt          string `json:"updatedAt,omitempty"`
}

// UserEnvelope wraps a user and an optional token.
type UserEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *UserResponse `json:"user,omitempty"`
	Token   string        `json:"token,omitempty"`
}

// InitiateRegistration handles POST /api/users/auth-boarding
func (h *UserHandler) InitiateRegistration(c *gin.Context) {
	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.userService.InitiateRegistration(c.Request.Context(), req.MobileNumber, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := UserEnvelope{Success: true, Message: result.Message, Token: result.Token}
	if result.User != nil {
		resp.User = toUserResponse(result.User)
	}
	respondJSON(c, http.StatusOK, resp)
}

// VerifyUser handles PATCH /api/users/verify
func (h *UserHandler) VerifyUser(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.VerifyUser(c.Request.Context(), req.MobileNumber, req.VerifyCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, UserEnvelope{Success: true, Message: "User verified successfully", User: toUserResponse(user)})
}

// Authenticate handles POST /api/users/auth
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	userID, err := middleware.ResolveActor(c, req.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	in := service.AuthRequest{
		UserID:   userID,
		FullName: req.FormData.FullName,
		Email:    req.FormData.Email,
		Password: req.FormData.Password,
		Role:     req.FormData.Role,
	}
	if req.Documents != nil {
		docs := req.Documents.toInput()
		in.Documents = &docs
	}

	result, err := h.userService.Authenticate(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if result.Registered {
		respondJSON(c, http.StatusCreated, UserEnvelope{
			Success: true,
			Message: "User registered successfully",
			User:    toUserResponse(result.User),
			Token:   result.Token,
		})
		return
	}
	respondJSON(c, http.StatusOK, UserEnvelope{
		Success: true,
		Message: "Login successful",
		User:    toUserResponse(result.User),
		Token:   result.Token,
	})
}

// GetProfile handles GET /api/users/profile/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, UserEnvelope{Success: true, Message: "User fetched", User: toUserResponse(user)})
}

// UpdateProfile handles PATCH /api/users/profile/update/:id
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.ResolveActor(c, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileRequest{
		FullName:     req.FullName,
		MobileNumber: req.MobileNumber,
		Avatar:       req.Avatar,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, UserEnvelope{Success: true, Message: "Profile updated", User: toUserResponse(user)})
}

func toUserResponse(user *domain.User) *UserResponse {
	resp := &UserResponse{
		ID:                 user.ID,
		Avatar:             user.Avatar,
		FullName:           user.FullName,
		Email:              user.Email,
		MobileNumber:       user.MobileNumber,
		Role:               string(user.Role),
		IsVerified:         user.IsVerified,
		IsDocumentVerified: user.IsDocumentVerified,
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.Format(time.RFC3339)
		resp.UpdatedAt = user.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
