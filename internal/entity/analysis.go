package entity

import "time"

// InferenceDetection is one box as returned by the YOLO inference service.
// Box is x1, y1, x2, y2 in pixels.
type InferenceDetection struct {
	ClassID    int        `json:"class_id"`
	Name       string     `json:"name"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"box"`
}

type InferenceResult struct {
	Detections []InferenceDetection `json:"detections"`
	Labels     []string             `json:"labels,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Analysis is one scored image or detection batch.
type Analysis struct {
	ID         string
	CreatedAt  time.Time
	Source     string
	Detections int
	Discarded  int
}
