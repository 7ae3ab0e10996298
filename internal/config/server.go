package config

import (
	"NutriLens/database/postgres"
	"NutriLens/internal/api/analysis"
	analysisHandler "NutriLens/internal/api/analysis/handler"
	analysisRepository "NutriLens/internal/api/analysis/repository"
	analysisService "NutriLens/internal/api/analysis/service"
	"NutriLens/internal/middleware"
	"NutriLens/pkg/gemini"
	"NutriLens/pkg/nutrition"
	"NutriLens/pkg/redis"
	"NutriLens/pkg/s3"
	"NutriLens/pkg/utils"
	websocketPkg "NutriLens/pkg/websocket"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	handlers      []handler
	store         *nutrition.Store
	labels        nutrition.Labels
	catalogLoader analysisService.ICatalogLoader
	detector      analysisService.Detector
	minConfidence float64
	redisServer   redis.IRedis
	s3Client      s3.ItfS3
	inferenceWS   websocketPkg.IWebsocket
	geminiClient  gemini.IGemini
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.store == nil {
		return nil, fmt.Errorf("nutrition catalog is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithCatalog connects the configured catalog source, loads the catalog and
// checks it against the detector label space. Any invalid entry aborts
// startup.
func WithCatalog() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before catalog")
		}

		cfg := analysis.CatalogConfig{
			Source:   analysis.CatalogSource(strings.ToLower(os.Getenv("CATALOG_SOURCE"))),
			Path:     envOrDefault("CATALOG_PATH", "./nutrition_db.json"),
			S3Key:    envOrDefault("CATALOG_S3_KEY", "nutrition_db.json"),
			RedisKey: envOrDefault("CATALOG_REDIS_KEY", "nutrilens:catalog"),
		}

		var repo analysisRepository.Repository
		switch cfg.Source {
		case analysis.SourceS3:
			client, err := s3.New()
			if err != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
				return fmt.Errorf("failed to create S3 client: %w", err)
			}
			s.s3Client = client
		case analysis.SourceRedis:
			client, err := redis.New()
			if err != nil {
				s.log.Errorf("Failed to connect to redis: %v", err)
				return fmt.Errorf("failed to create redis client: %w", err)
			}
			s.redisServer = client
		case analysis.SourcePostgres:
			db, err := postgres.New()
			if err != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
				return fmt.Errorf("failed to create database connection: %w", err)
			}
			s.db = db
			repo = analysisRepository.New(db, s.log)
		}

		s.catalogLoader = analysisService.NewCatalogLoader(s.log, cfg, s.s3Client, s.redisServer, repo)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		catalog, err := s.catalogLoader.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load nutrition catalog: %w", err)
		}
		s.store = nutrition.NewStore(catalog)

		labels, err := detectorLabels()
		if err != nil {
			return fmt.Errorf("failed to read detector labels: %w", err)
		}
		s.labels = labels
		analysisService.ReportLabelCoverage(s.log, catalog, labels)

		return nil
	}
}

// WithDetector selects the food detector from DETECTOR. It must run after
// WithCatalog.
func WithDetector() ServerOption {
	return func(s *Server) error {
		if s.store == nil {
			return fmt.Errorf("catalog must be loaded before detector")
		}

		s.minConfidence = 0.3
		if raw := os.Getenv("DETECTION_MIN_CONFIDENCE"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 || v > 1 {
				return fmt.Errorf("invalid DETECTION_MIN_CONFIDENCE %q", raw)
			}
			s.minConfidence = v
		}

		kind := analysis.DetectorType(strings.ToLower(envOrDefault("DETECTOR", string(analysis.YOLODetector))))
		switch kind {
		case analysis.YOLODetector:
			url := envOrDefault("INFERENCE_WS_URL", "ws://localhost:8000/ws/detect")
			s.inferenceWS = websocketPkg.NewInferenceClient(url, s.log)
			s.detector = analysisService.NewYOLODetector(s.inferenceWS)
		case analysis.GeminiDetector:
			client, err := gemini.NewGeminiClient()
			if err != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.geminiClient = client
			s.detector = analysisService.NewGeminiDetector(client, s.store)
		case analysis.NoDetector:
			s.log.Warn("No food detector configured, image analysis is disabled")
		default:
			return fmt.Errorf("unknown detector %q", kind)
		}

		if s.detector != nil {
			s.log.WithFields(logrus.Fields{
				"detector":       s.detector.Name(),
				"min_confidence": s.minConfidence,
			}).Info("Food detector configured")
		}
		return nil
	}
}

// RegisterHandler installs the global middleware and every route. Fiber
// runs handlers in registration order, so middleware goes first.
func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	// Nutrition analysis
	aggregator := nutrition.NewAggregator(s.labels)
	analysisServices := analysisService.NewAnalysisService(s.log, s.store, aggregator, s.detector, s.utils, s.minConfidence)
	analysisHandlers := analysisHandler.New(s.log, s.validator, s.middleware, analysisServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, analysisHandlers)

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// ReloadCatalog reloads the catalog from its source. The running catalog
// stays in place when the new one fails validation.
func (s *Server) ReloadCatalog(ctx context.Context) error {
	if err := s.catalogLoader.Reload(ctx, s.store); err != nil {
		return err
	}
	analysisService.ReportLabelCoverage(s.log, s.store.Catalog(), s.labels)
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if s.inferenceWS != nil {
		s.inferenceWS.CloseConnections()
	}
	if s.geminiClient != nil {
		if cerr := s.geminiClient.Close(); cerr != nil {
			s.log.Warnf("Failed to close Gemini client: %v", cerr)
		}
	}
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Failed to close redis client: %v", cerr)
		}
	}
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil {
			s.log.Warnf("Failed to close database: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		catalog := s.store.Catalog()
		detector := string(analysis.NoDetector)
		if s.detector != nil {
			detector = s.detector.Name()
		}
		return ctx.JSON(fiber.Map{
			"message":         "Server is Healthy!",
			"catalog_entries": catalog.Len(),
			"detector":        detector,
		})
	})
}

// detectorLabels reads the detector label space from DETECTOR_LABELS or,
// failing that, from the file named by DETECTOR_LABELS_PATH (one label per
// line or comma separated).
func detectorLabels() (nutrition.Labels, error) {
	if raw := os.Getenv("DETECTOR_LABELS"); raw != "" {
		return nutrition.ParseLabels(raw), nil
	}

	path := os.Getenv("DETECTOR_LABELS_PATH")
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return nutrition.ParseLabels(strings.ReplaceAll(string(data), "\n", ",")), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
