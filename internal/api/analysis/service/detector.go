package analysisService

import (
	"NutriLens/internal/api/analysis"
	"NutriLens/pkg/gemini"
	"NutriLens/pkg/nutrition"
	websocketPkg "NutriLens/pkg/websocket"
	"errors"
	"fmt"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
	"image"
	"strings"
)

// maxCountPerLabel caps how many instances a vision model may claim for a
// single food.
const maxCountPerLabel = 50

// Detector turns an image into raw detections.
type Detector interface {
	Name() string
	Detect(ctx context.Context, image []byte) ([]nutrition.Detection, error)
}

type yoloDetector struct {
	client websocketPkg.IWebsocket
}

func NewYOLODetector(client websocketPkg.IWebsocket) Detector {
	return &yoloDetector{client: client}
}

func (d *yoloDetector) Name() string {
	return string(analysis.YOLODetector)
}

func (d *yoloDetector) Detect(ctx context.Context, img []byte) ([]nutrition.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := d.client.ProcessFrame(ctx, img)
	if err != nil {
		return nil, err
	}

	// unnamed boxes take their name from the label space the model reports
	labels := nutrition.Labels(result.Labels)

	detections := make([]nutrition.Detection, 0, len(result.Detections))
	for _, det := range result.Detections {
		label := det.Name
		if label == "" && det.ClassID >= 0 && det.ClassID < len(labels) {
			label = labels[det.ClassID]
		}
		detections = append(detections, nutrition.Detection{
			ClassID:    det.ClassID,
			Label:      label,
			Confidence: det.Confidence,
			Box:        image.Rect(int(det.Box[0]), int(det.Box[1]), int(det.Box[2]), int(det.Box[3])),
		})
	}
	return detections, nil
}

type geminiDetector struct {
	client gemini.IGemini
	store  *nutrition.Store
}

// NewGeminiDetector asks a vision model to count foods, restricted to the
// labels of the live catalog.
func NewGeminiDetector(client gemini.IGemini, store *nutrition.Store) Detector {
	return &geminiDetector{client: client, store: store}
}

func (d *geminiDetector) Name() string {
	return string(analysis.GeminiDetector)
}

type geminiFood struct {
	Label      string   `json:"label"`
	Count      int      `json:"count"`
	Confidence *float64 `json:"confidence"`
}

type geminiFoods struct {
	Foods []geminiFood `json:"foods"`
}

func (d *geminiDetector) Detect(ctx context.Context, img []byte) ([]nutrition.Detection, error) {
	result, err := d.client.AnalyzeImage(ctx, img, d.prompt())
	if err != nil {
		return nil, err
	}

	return parseGeminiFoods(result)
}

func (d *geminiDetector) prompt() string {
	labels := d.store.Catalog().Labels()

	return fmt.Sprintf(`
	Identify every food item visible in this photo and count how many separate
	pieces or portions of each there are.

	Use ONLY these labels: %s.
	If a food does not match any label, use a short lowercase name for it.

	Output format:
	{
		"foods": [
			{"label": "apple", "count": 2, "confidence": 0.9}
		]
	}

	Give ONLY the JSON response, without any additional text.
	`, strings.Join(labels, ", "))
}

func parseGeminiFoods(response string) ([]nutrition.Detection, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	var foods geminiFoods
	if err := jsoniter.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &foods); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	var detections []nutrition.Detection
	for _, food := range foods.Foods {
		label := strings.ToLower(strings.TrimSpace(food.Label))
		if label == "" || food.Count <= 0 {
			continue
		}
		count := food.Count
		if count > maxCountPerLabel {
			count = maxCountPerLabel
		}
		confidence := 1.0
		if food.Confidence != nil {
			confidence = *food.Confidence
		}
		for i := 0; i < count; i++ {
			detections = append(detections, nutrition.Detection{
				ClassID:    -1,
				Label:      label,
				Confidence: confidence,
			})
		}
	}

	return detections, nil
}
