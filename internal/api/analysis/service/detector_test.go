package analysisService

import (
	"NutriLens/internal/entity"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestYOLODetector(t *testing.T) {
	ws := &fakeWebsocket{result: &entity.InferenceResult{Detections: []entity.InferenceDetection{
		{ClassID: 2, Name: "apple", Confidence: 0.88, Box: [4]float64{10.4, 20.6, 110, 220}},
	}}}

	detections, err := NewYOLODetector(ws).Detect(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	d := detections[0]
	if d.Label != "apple" || d.ClassID != 2 || d.Box.Min.X != 10 || d.Box.Max.Y != 220 {
		t.Fatalf("unexpected detection %+v", d)
	}
}

func TestYOLODetectorNamesBoxesFromReportedLabels(t *testing.T) {
	ws := &fakeWebsocket{result: &entity.InferenceResult{
		Labels: []string{"apple", "egg"},
		Detections: []entity.InferenceDetection{
			{ClassID: 1, Confidence: 0.9},
			{ClassID: 0, Name: "green apple", Confidence: 0.8},
			{ClassID: 9, Confidence: 0.7},
		},
	}}

	detections, err := NewYOLODetector(ws).Detect(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{detections[0].Label, detections[1].Label, detections[2].Label}
	if got[0] != "egg" || got[1] != "green apple" || got[2] != "" {
		t.Fatalf("unexpected labels %q", got)
	}
}

func TestYOLODetectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewYOLODetector(&fakeWebsocket{}).Detect(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGeminiDetector(t *testing.T) {
	client := &fakeGemini{reply: "```json\n{\"foods\": [{\"label\": \"Apple\", \"count\": 2, \"confidence\": 0.7}, {\"label\": \"toast\", \"count\": 1}, {\"label\": \"\", \"count\": 3}]}\n```"}

	detections, err := NewGeminiDetector(client, testStore(t)).Detect(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detections) != 3 {
		t.Fatalf("expected 3 detections, got %d", len(detections))
	}
	if detections[0].Label != "apple" || detections[0].Confidence != 0.7 {
		t.Fatalf("unexpected detection %+v", detections[0])
	}
	if detections[2].Label != "toast" || detections[2].Confidence != 1 {
		t.Fatalf("missing confidence should default to 1, got %+v", detections[2])
	}
	if !strings.Contains(client.prompt, "apple, egg") {
		t.Fatalf("prompt should list catalog labels: %s", client.prompt)
	}
}

func TestParseGeminiFoods(t *testing.T) {
	if _, err := parseGeminiFoods("no json here"); err == nil {
		t.Fatalf("expected error for missing JSON")
	}

	detections, err := parseGeminiFoods(`{"foods": [{"label": "rice", "count": 500}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detections) != maxCountPerLabel {
		t.Fatalf("expected count to be capped at %d, got %d", maxCountPerLabel, len(detections))
	}
}
