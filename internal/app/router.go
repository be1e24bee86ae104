package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"cabbook/internal/handler"
	"cabbook/internal/logger"
	"cabbook/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler        *handler.TripHandler
	UserHandler        *handler.UserHandler
	ReviewHandler      *handler.ReviewHandler
	CarDocumentHandler *handler.CarDocumentHandler
	BlobHandler        *handler.BlobHandler
	MapsHandler        *handler.MapsHandler
	RedisClient        *redis.Client
	NewRelicApp        *newrelic.Application
	Tokens             middleware.TokenParser
	AuthRequired       bool
	Log                logger.ILogger
}

// NewRouter creates a new Gin router with all routes registered under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Idempotency keys are scoped by actor, so authentication runs first.
	router.Use(middleware.Authenticate(deps.Tokens, deps.AuthRequired, deps.Log))
	router.Use(middleware.NewRelicActor())
	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Log))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		trips := api.Group("/trips")
		{
			trips.POST("/create/:vendorId", deps.TripHandler.CreateTrip)
			trips.GET("/vendor/:vendorId", deps.TripHandler.ListVendorTrips)
			trips.GET("/get-all", deps.TripHandler.ListAllTrips)
			trips.GET("/driver", deps.TripHandler.ListDriverTrips)
			trips.GET("/:tripId", deps.TripHandler.GetTrip)
			trips.PATCH("/accept/:tripId/:driverId/:paymentId", deps.TripHandler.AcceptTrip)
			trips.POST("/complete/:tripId", deps.TripHandler.CompleteTrip)
			trips.PATCH("/cancel/:tripId/:vendorId", deps.TripHandler.CancelTrip)
		}

		users := api.Group("/users")
		{
			users.POST("/auth-boarding", deps.UserHandler.InitiateRegistration)
			users.POST("/auth", deps.UserHandler.Authenticate)
			users.GET("/profile/:id", deps.UserHandler.GetProfile)
			users.PATCH("/profile/update/:id", deps.UserHandler.UpdateProfile)
			users.PATCH("/verify", deps.UserHandler.VerifyUser)
		}

		reviews := api.Group("/reviews")
		{
			reviews.POST("/create/:reviewerId", deps.ReviewHandler.Create)
			reviews.GET("/user/:userId", deps.ReviewHandler.ListByUser)
			reviews.PATCH("/update/:reviewId/:reviewerId", deps.ReviewHandler.Update)
			reviews.DELETE("/delete/:reviewId/:reviewerId", deps.ReviewHandler.Delete)
		}

		docs := api.Group("/car-docs")
		{
			docs.POST("/create", deps.CarDocumentHandler.Create)
			docs.GET("/get-user/:userId", deps.CarDocumentHandler.GetByUser)
			docs.PATCH("/update/:userId", deps.CarDocumentHandler.Update)
			docs.DELETE("/delete/:userId", deps.CarDocumentHandler.Delete)
		}

		blobs := api.Group("/azure/blob")
		{
			blobs.POST("/upload", deps.BlobHandler.Upload)
			blobs.DELETE("/delete", deps.BlobHandler.Delete)
		}

		google := api.Group("/google")
		{
			google.GET("/autocomplete", deps.MapsHandler.Autocomplete)
			google.GET("/distance-matrix", deps.MapsHandler.DistanceMatrix)
		}
	}

	return router
}
