package handlerUtil

import (
	"NutriLens/pkg/log"
	"NutriLens/pkg/response"
	"NutriLens/pkg/utils"
	"context"
	"errors"
	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

const (
	msgInvalidImage  = "Invalid image. Only image files are accepted."
	msgImageTooLarge = "Image too large. Maximum size is 10MB."
	msgUnexpected    = "An unexpected error occurred"
)

// PublicMessage is the text Handle would send to a client for err. It never
// includes the wrapped cause.
func PublicMessage(err error) string {
	var respErr *response.Error
	var fiberErr *fiber.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fiberUtils.StatusMessage(fiber.StatusRequestTimeout)
	case errors.As(err, &respErr):
		return respErr.Error()
	case errors.Is(err, utils.ErrNotAnImage), errors.Is(err, utils.ErrEmptyImage), errors.Is(err, utils.ErrNoFile):
		return msgInvalidImage
	case errors.Is(err, utils.ErrFileTooLarge):
		return msgImageTooLarge
	case errors.As(err, &fiberErr):
		return fiberErr.Message
	default:
		return msgUnexpected
	}
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) fields(requestID string, err error, path string, operation string) log.Fields {
	return log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Operation timed out")
		return h.HandleRequestTimeout(c)
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields := h.fields(requestID, err, path, operation)
		fields["code"] = respErr.Code

		if respErr.Code >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error("Operation failed with error response")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: respErr.Error()})
	}

	if errors.Is(err, utils.ErrNotAnImage) || errors.Is(err, utils.ErrEmptyImage) || errors.Is(err, utils.ErrNoFile) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Invalid image upload")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: msgInvalidImage,
			Code:  "INVALID_IMAGE",
		})
	}

	if errors.Is(err, utils.ErrFileTooLarge) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Image too large")
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
			Error: msgImageTooLarge,
			Code:  "IMAGE_TOO_LARGE",
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		h.logger.WithFields(h.fields(requestID, err, path, operation)).Warn("Request rejected")
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	traceID := log.ErrorWithTraceID(h.fields(requestID, err, path, operation), "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   msgUnexpected,
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: fiberUtils.StatusMessage(fiber.StatusRequestTimeout),
		Code:  "REQUEST_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
