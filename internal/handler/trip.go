package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"cabbook/internal/domain"
	"cabbook/internal/logger"
	"cabbook/internal/middleware"
	"cabbook/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
	log         logger.ILogger
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, log logger.ILogger) *TripHandler {
	return &TripHandler{tripService: tripService, log: log}
}

// CreateTripRequest is the HTTP request body for creating a trip. Pointer
// fields tell an absent value from a zero one.
type CreateTripRequest struct {
	PickupLocation  *string  `json:"pickupLocation"`
	DropoffLocation *string  `json:"dropoffLocation"`
	PickupDate      *string  `json:"pickupDate"`
	PickupTime      *string  `json:"pickupTime"`
	Duration        *float64 `json:"duration"`
	DurationUnit    *string  `json:"durationUnit"`
	TripType        *string  `json:"tripType"`
	Fare            *float64 `json:"fare"`
	Commission      *float64 `json:"commission"`
	CarType         *string  `json:"carType"`
	CarName         string   `json:"carName"`
	Additional      string   `json:"additional"`
}

// CompleteTripRequest is the HTTP request body for completing a trip.
type CompleteTripRequest struct {
	VerifyCode string `json:"verifyCode"`
	DriverID   string `json:"driverId"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID              string  `json:"id"`
	VendorID        string  `json:"vendorId"`
	DriverID        string  `json:"driverId,omitempty"`
	PickupLocation  string  `json:"pickupLocation"`
	DropoffLocation string  `json:"dropoffLocation"`
	PickupDate      string  `json:"pickupDate"`
	PickupTime      string  `json:"pickupTime"`
	Duration        float64 `json:"duration"`
	DurationUnit    string  `json:"durationUnit"`
	TripType        string  `json:"tripType"`
	Fare            float64 `json:"fare"`
	Commission      float64 `json:"commission"`
	CommissionState string  `json:"commissionState,omitempty"`
	PaymentID       string  `json:"paymentId,omitempty"`
	CarType         string  `json:"carType"`
	CarName         string  `json:"carName,omitempty"`
	Additional      string  `json:"additional,omitempty"`
	VerifyCode      string  `json:"verifyCode,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// VendorResponse is the public profile of a trip's vendor.
type VendorResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Avatar       string `json:"avatar,omitempty"`
}

// TripWithVendorResponse is a trip with its vendor, null when the vendor no
// longer exists.
type TripWithVendorResponse struct {
	TripResponse
	Vendor *VendorResponse `json:"vendor"`
}

// PaginationResponse describes one page of a listing.
type PaginationResponse struct {
	TotalTrips  int `json:"totalTrips"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// TripEnvelope wraps a single trip.
type TripEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Trip    *TripResponse `json:"trip"`
}

// VendorTripsResponse is the response of the vendor listing.
type VendorTripsResponse struct {
	Success    bool               `json:"success"`
	Trips      []TripResponse     `json:"trips"`
	Pagination PaginationResponse `json:"pagination"`
}

// AllTripsResponse is the response of the filtered listing.
type AllTripsResponse struct {
	Success     bool                     `json:"success"`
	Message     string                   `json:"message"`
	Trips       []TripWithVendorResponse `json:"trips"`
	CurrentPage int                      `json:"currentPage"`
	TotalPages  int                      `json:"totalPages"`
	TotalTrips  int                      `json:"totalTrips"`
}

// CreateTrip handles POST /api/trips/create/:vendorId
func (h *TripHandler) CreateTrip(c *gin.Context) {
	vendorID, err := middleware.ResolveActor(c, c.Param("vendorId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		VendorID:        vendorID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		PickupDate:      req.PickupDate,
		PickupTime:      req.PickupTime,
		Duration:        req.Duration,
		DurationUnit:    req.DurationUnit,
		TripType:        req.TripType,
		Fare:            req.Fare,
		Commission:      req.Commission,
		CarType:         req.CarType,
		CarName:         req.CarName,
		Additional:      req.Additional,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toTripResponse(trip)
	respondJSON(c, http.StatusCreated, TripEnvelope{Success: true, Message: "Trip created", Trip: &resp})
}

// ListVendorTrips handles GET /api/trips/vendor/:vendorId
func (h *TripHandler) ListVendorTrips(c *gin.Context) {
	vendorID, err := middleware.ResolveActor(c, c.Param("vendorId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	trips, page, err := h.tripService.ListVendorTrips(c.Request.Context(),
		vendorID,
		c.Query("tripState"),
		cast.ToInt(c.Query("page")),
		cast.ToInt(c.Query("limit")),
	)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := VendorTripsResponse{
		Success:    true,
		Trips:      make([]TripResponse, 0, len(trips)),
		Pagination: toPaginationResponse(page),
	}
	for _, trip := range trips {
		resp.Trips = append(resp.Trips, toTripResponse(trip))
	}
	respondJSON(c, http.StatusOK, resp)
}

// ListAllTrips handles GET /api/trips/get-all
func (h *TripHandler) ListAllTrips(c *gin.Context) {
	items, page, err := h.tripService.ListAllTrips(c.Request.Context(), service.TripQuery{
		VendorID: c.Query("vendorId"),
		DriverID: c.Query("driverId"),
		TripType: c.Query("tripType"),
		CarType:  c.Query("carType"),
		Status:   c.Query("tripStatus"),
		Page:     cast.ToInt(c.Query("page")),
		Limit:    cast.ToInt(c.Query("limit")),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, AllTripsResponse{
		Success:     true,
		Message:     "Trips fetched successfully",
		Trips:       toTripsWithVendor(items),
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalTrips:  page.TotalTrips,
	})
}

// ListDriverTrips handles GET /api/trips/driver
func (h *TripHandler) ListDriverTrips(c *gin.Context) {
	driverID, err := middleware.ResolveActor(c, c.Query("driverId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	items, err := h.tripService.ListDriverTrips(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripsWithVendor(items))
}

// GetTrip handles GET /api/trips/:tripId
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("tripId"), middleware.ActorID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toTripResponse(trip)
	respondJSON(c, http.StatusOK, TripEnvelope{Success: true, Trip: &resp})
}

// AcceptTrip handles PATCH /api/trips/accept/:tripId/:driverId/:paymentId
func (h *TripHandler) AcceptTrip(c *gin.Context) {
	driverID, err := middleware.ResolveActor(c, c.Param("driverId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	trip, err := h.tripService.AcceptTrip(c.Request.Context(), c.Param("tripId"), driverID, c.Param("paymentId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toTripResponse(trip)
	resp.VerifyCode = ""
	respondJSON(c, http.StatusOK, TripEnvelope{Success: true, Message: "Trip accepted successfully", Trip: &resp})
}

// CompleteTrip handles POST /api/trips/complete/:tripId
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	var req CompleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	driverID, err := middleware.ResolveActor(c, req.DriverID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	trip, err := h.tripService.CompleteTrip(c.Request.Context(), c.Param("tripId"), driverID, req.VerifyCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toTripResponse(trip)
	resp.VerifyCode = ""
	respondJSON(c, http.StatusOK, TripEnvelope{Success: true, Message: "Trip completed successfully", Trip: &resp})
}

// CancelTrip handles PATCH /api/trips/cancel/:tripId/:vendorId
func (h *TripHandler) CancelTrip(c *gin.Context) {
	vendorID, err := middleware.ResolveActor(c, c.Param("vendorId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	trip, err := h.tripService.CancelTripByVendor(c.Request.Context(), c.Param("tripId"), vendorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toTripResponse(trip)
	respondJSON(c, http.StatusOK, TripEnvelope{Success: true, Message: "Trip cancelled successfully", Trip: &resp})
}

func toTripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		ID:              trip.ID,
		VendorID:        trip.VendorID,
		DriverID:        trip.DriverID,
		PickupLocation:  trip.PickupLocation,
		DropoffLocation: trip.DropoffLocation,
		PickupDate:      trip.PickupDate.Format(time.DateOnly),
		PickupTime:      trip.PickupTime.Format(time.RFC3339),
		Duration:        trip.Duration,
		DurationUnit:    string(trip.DurationUnit),
		TripType:        string(trip.TripType),
		Fare:            trip.Fare,
		Commission:      trip.Commission,
		CommissionState: string(trip.CommissionState),
		PaymentID:       trip.PaymentID,
		CarType:         string(trip.CarType),
		CarName:         trip.CarName,
		Additional:      trip.Additional,
		VerifyCode:      trip.VerifyCode,
		Status:          string(trip.Status),
		CreatedAt:       trip.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       trip.UpdatedAt.Format(time.RFC3339),
	}
}

func toTripsWithVendor(items []*domain.TripWithVendor) []TripWithVendorResponse {
	result := make([]TripWithVendorResponse, 0, len(items))
	for _, item := range items {
		resp := TripWithVendorResponse{TripResponse: toTripResponse(item.Trip)}
		if item.Vendor != nil {
			resp.Vendor = &VendorResponse{
				ID:           item.Vendor.ID,
				FullName:     item.Vendor.FullName,
				MobileNumber: item.Vendor.MobileNumber,
				Avatar:       item.Vendor.Avatar,
			}
		}
		result = append(result, resp)
	}
	return result
}

func toPaginationResponse(p service.Pagination) PaginationResponse {
	return PaginationResponse{
		TotalTrips:  p.TotalTrips,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		Limit:       p.Limit,
	}
}
