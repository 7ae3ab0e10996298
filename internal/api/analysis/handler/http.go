package analysisHandler

import (
	analysisService "NutriLens/internal/api/analysis/service"
	"NutriLens/internal/middleware"
	"NutriLens/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"time"
)

type AnalysisHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	analysisService analysisService.IAnalysisService
	utils           utils.IUtils
	timeout         time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	as analysisService.IAnalysisService,
	utils utils.IUtils,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: as,
		log:             log,
		validator:       validator,
		middleware:      middleware,
		utils:           utils,
		timeout:         30 * time.Second,
	}
}

func (h *AnalysisHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	nutrition := srv.Group("/nutrition")
	nutrition.Post("/analyze", h.middleware.NewRateLimiter, h.AnalyzeImage)
	nutrition.Post("/aggregate", h.middleware.NewRateLimiter, h.AggregateDetections)
	nutrition.Get("/catalog", h.ListCatalog)
	nutrition.Get("/catalog/:label", h.GetProfile)

	nutrition.Use("/ws", h.middleware.NewRateLimiter, wsMiddleware)
	nutrition.Get("/ws", websocket.New(h.handleAnalyzeWebSocket))
}
