package middleware

import (
	"NutriLens/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"time"
)

const (
	RequestIDKey       = "X-Request-ID"
	maxRequestIDLength = 64
)

// NewRequestIDMiddleware reuses a caller supplied X-Request-ID when it is a
// short token of letters, digits, '-' or '_'. Anything else is replaced by a
// fresh ULID so ids stay safe to log and echo back.
func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if !validRequestID(requestID) {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
