package middleware

import (
	"NutriLens/pkg/log"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

// LoggerConfig logs one line per request. Image payloads are summarised
// rather than written to the log.
func LoggerConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals(RequestIDKey).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		c.Locals("request_id", requestID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 {
			logFields["request_body"] = sanitizeRequestBody(string(c.Request().Header.ContentType()), body)
		}

		if status >= 500 {
			log.Error(logFields, "Server error")
		} else if status >= 400 {
			log.Warn(logFields, "Client error")
		} else {
			log.Info(logFields, "Success")
		}

		return err
	}
}

var imageFields = []string{"image_base64", "image", "frame"}

func sanitizeRequestBody(contentType string, body []byte) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal(body, &jsonBody); err != nil {
		return fmt.Sprintf("[non-JSON body: %s, %d bytes]", contentType, len(body))
	}

	for _, field := range imageFields {
		if v, exists := jsonBody[field].(string); exists {
			jsonBody[field] = fmt.Sprintf("[IMAGE %d chars]", len(v))
		}
	}

	if detections, ok := jsonBody["detections"].([]interface{}); ok && len(detections) > 20 {
		jsonBody["detections"] = fmt.Sprintf("[%d detections]", len(detections))
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
