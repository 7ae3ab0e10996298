package analysisHandler

import (
	"NutriLens/internal/api/analysis"
	"NutriLens/internal/middleware"
	contextPkg "NutriLens/pkg/context"
	"NutriLens/pkg/handlerUtil"
	"NutriLens/pkg/log"
	"context"
	"github.com/gofiber/websocket/v2"
	"time"
)

// handleAnalyzeWebSocket scores every binary frame it receives and answers
// with one AnalysisResult per frame.
func (h *AnalysisHandler) handleAnalyzeWebSocket(c *websocket.Conn) {
	h.log.Info("Nutrition analysis WebSocket client connected")
	defer h.log.Info("Nutrition analysis WebSocket client disconnected")

	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Nutrition WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		reply := h.analyzeFrame(requestID, message)

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

// analyzeFrame scores one frame. Failures carry only the client facing
// message; the cause goes to the log.
func (h *AnalysisHandler) analyzeFrame(requestID string, frame []byte) analysis.AnalysisResult {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), h.timeout)
	defer cancel()

	result, err := h.analysisService.AnalyzeImage(ctx, frame)
	if err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"operation":  "analyze_frame",
		}).Error("Error analysing frame")
		return analysis.AnalysisResult{Error: handlerUtil.PublicMessage(err)}
	}

	return analysis.AnalysisResult{Data: *result}
}
