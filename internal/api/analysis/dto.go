package analysis

import "NutriLens/pkg/nutrition"

type AnalyzeImageRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type DetectionRequest struct {
	ClassID    int          `json:"class_id" validate:"gte=0"`
	Label      string       `json:"label" validate:"omitempty,max=128"`
	Confidence float64      `json:"confidence" validate:"gte=0,lte=1"`
	Box        *BoundingBox `json:"box,omitempty"`
}

type AggregateRequest struct {
	Detections    []DetectionRequest `json:"detections" validate:"max=1000,dive"`
	MinConfidence *float64           `json:"min_confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type DetectedObject struct {
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

type AnalysisResponse struct {
	AnalysisID     string           `json:"analysis_id"`
	Detections     []string         `json:"detections"`
	TotalNutrition nutrition.Totals `json:"total_nutrition"`
	Unscored       []string         `json:"unscored"`
	Objects        []DetectedObject `json:"objects"`
	Discarded      int              `json:"discarded"`
}

type AnalysisResult struct {
	Data  AnalysisResponse `json:"data,omitempty"`
	Error string           `json:"error,omitempty"`
}

type CatalogResponse struct {
	Count  int      `json:"count"`
	Labels []string `json:"labels"`
}

type ProfileResponse struct {
	Label   string            `json:"label"`
	Profile nutrition.Profile `json:"profile"`
}

type CatalogSource string

const (
	SourceFile     CatalogSource = "file"
	SourceS3       CatalogSource = "s3"
	SourceRedis    CatalogSource = "redis"
	SourcePostgres CatalogSource = "postgres"
)

type CatalogConfig struct {
	Source   CatalogSource
	Path     string
	S3Key    string
	RedisKey string
}

type DetectorType string

const (
	YOLODetector   DetectorType = "yolo"
	GeminiDetector DetectorType = "gemini"
	NoDetector     DetectorType = "none"
)
