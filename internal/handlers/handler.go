package handlers

import (
	"heating_card/internal/logger"
	"heating_card/internal/service"

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

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live card widgets. Browsers cannot set headers on a websocket, so the
	// token may also come from ?access_token=.
	router.GET("/ws/cards/:id", h.queryTokenMiddleware, h.cardStream)
	router.GET("/cards/:id", h.queryTokenMiddleware, h.cardPage)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userMiddleware)
	{
		h.registerCardRoutes(api)
		api.GET("/catalog", h.getCatalog)
	}
}

func (h *Handler) registerCardRoutes(api *gin.RouterGroup) {
	cards := api.Group("/cards")
	{
		cards.GET("", h.listCards)
		cards.GET("/:id", h.getCard)
		// Body example: {"name":"Lounge","tap_action":{"action":"none"}}
		cards.PUT("/:id/config", h.updateCardConfig)
	}
}
