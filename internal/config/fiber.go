package config

import (
	"NutriLens/internal/api/analysis"
	"NutriLens/pkg/handlerUtil"
	"errors"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "NutriLens",
			BodyLimit:         15 * 1024 * 1024,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: true,
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				var fe *fiber.Error
				if errors.As(err, &fe) {
					return c.Status(fe.Code).JSON(handlerUtil.ErrorResponse{Error: fe.Message})
				}
				logger.WithField("path", c.Path()).Errorf("Unhandled error: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(handlerUtil.ErrorResponse{
					Error: analysis.ErrInternalServerError.Error(),
				})
			},
		})

	return app
}
