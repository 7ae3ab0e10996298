package main

import (
	"NutriLens/internal/config"
	"NutriLens/pkg/log"
	"context"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	logger, envErr := newLogger()
	if envErr != nil {
		logger.Warnf("No .env file loaded: %v", envErr)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithUtils(),
		config.WithCatalog(),
		config.WithDetector(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			logger.Info("Reloading nutrition catalog...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := server.ReloadCatalog(ctx); err != nil {
				logger.Errorf("Catalog reload failed: %v", err)
			}
			cancel()
			continue
		}
		break
	}

	logger.Info("Shutting down server...")
	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}

// newLogger loads .env before the logger is built, since the logger reads
// LOG_LEVEL, LOG_DIR and APP_ENV only once.
func newLogger(envFiles ...string) (*logrus.Logger, error) {
	err := godotenv.Load(envFiles...)
	return log.NewLogger(), err
}
