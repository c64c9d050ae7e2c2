package handlers

import (
	_ "github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/docs"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Dashboard stream: connection view, queue status and alerts
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		h.registerCommandRoutes(api)
		h.registerConnectionRoutes(api)
		h.registerPreferenceRoutes(api)
		h.registerScheduleRoutes(api)
		h.registerSensorRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerCommandRoutes(api *gin.RouterGroup) {
	commands := api.Group("/commands")
	{
		// Body example: {"device_id":"bantay-01","action":"set-volume","params":{"level":5}}
		commands.POST("", h.sendCommand)
		commands.GET("/queue", h.getQueue)
		commands.POST("/flush", h.flushQueue)
	}
}

func (h *Handler) registerConnectionRoutes(api *gin.RouterGroup) {
	conn := api.Group("/connection")
	{
		conn.GET("", h.getConnection)
		conn.POST("/poll", h.pollConnection)
		// Body example: {"mode":"OFFLINE"}
		conn.POST("/mode", h.setMode)
		conn.POST("/sync", h.forceSync)
	}
}

func (h *Handler) registerPreferenceRoutes(api *gin.RouterGroup) {
	api.GET("/notifications/preferences", h.getNotificationPreferences)
	api.PUT("/notifications/preferences", h.updateNotificationPreferences)
	api.GET("/recommendations/preferences", h.getRecommendationPreferences)
	api.PUT("/recommendations/preferences", h.updateRecommendationPreferences)
}

func (h *Handler) registerScheduleRoutes(api *gin.RouterGroup) {
	api.GET("/schedule", h.getSchedule)
	api.PUT("/schedule", h.updateSchedule)
}

func (h *Handler) registerSensorRoutes(api *gin.RouterGroup) {
	api.POST("/sensors", h.ingestSensors)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
