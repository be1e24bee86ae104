package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"cabbook/internal/integration/maps"
	"cabbook/internal/logger"
)

// MapsHandler proxies Google Maps Platform requests.
type MapsHandler struct {
	client *maps.Client
	log    logger.ILogger
}

// NewMapsHandler creates a new MapsHandler.
func NewMapsHandler(client *maps.Client, log logger.ILogger) *MapsHandler {
	return &MapsHandler{client: client, log: log}
}

// MapsErrorResponse matches the error shape of the proxied endpoints.
type MapsErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type mapsCall func(ctx context.Context, query url.Values) (*maps.Response, error)

// Autocomplete handles GET /api/google/autocomplete
func (h *MapsHandler) Autocomplete(c *gin.Context) {
	h.proxy(c, h.client.Autocomplete, "Google Places API key is not configured", "Failed to fetch autocomplete suggestions")
}

// DistanceMatrix handles GET /api/google/distance-matrix
func (h *MapsHandler) DistanceMatrix(c *gin.Context) {
	h.proxy(c, h.client.DistanceMatrix, "Google API key is not configured", "Failed to fetch distance matrix")
}

func (h *MapsHandler) proxy(c *gin.Context, call mapsCall, missingKeyMsg, failureMsg string) {
	resp, err := call(c.Request.Context(), c.Request.URL.Query())
	if err == nil {
		c.Data(resp.StatusCode, resp.ContentType, resp.Body)
		return
	}

	var upstream *maps.UpstreamError
	switch {
	case errors.Is(err, maps.ErrInputRequired):
		c.JSON(http.StatusBadRequest, MapsErrorResponse{Error: "Input parameter is required"})
	case errors.Is(err, maps.ErrOriginDestinationRequired):
		c.JSON(http.StatusBadRequest, MapsErrorResponse{Error: "Both origins and destinations parameters are required"})
	case errors.Is(err, maps.ErrAPIKeyMissing):
		h.log.Error("google api key missing", logger.String("route", c.FullPath()))
		c.JSON(http.StatusInternalServerError, MapsErrorResponse{Error: missingKeyMsg})
	case errors.As(err, &upstream):
		h.log.Warning("google api error", logger.String("route", c.FullPath()), logger.Int("status", upstream.StatusCode))
		c.JSON(upstream.StatusCode, MapsErrorResponse{Error: "Google API error: " + upstream.Status})
	default:
		h.log.Error("google api request failed", logger.String("route", c.FullPath()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, MapsErrorResponse{Error: failureMsg})
	}
}
