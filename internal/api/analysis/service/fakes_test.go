package analysisService

import (
	"NutriLens/internal/entity"
	"NutriLens/pkg/nutrition"
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

const testCatalog = `{
	"apple": {"calories_per_100g": 52, "protein_per_100g": 0.3, "carbs_per_100g": 14, "fats_per_100g": 0.2, "standard_serving_grams": 150},
	"egg": {"calories_per_100g": 155, "protein_per_100g": 13, "carbs_per_100g": 1.1, "fats_per_100g": 11, "standard_serving_grams": 50}
}`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testStore(t *testing.T) *nutrition.Store {
	t.Helper()
	c, err := nutrition.Load(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return nutrition.NewStore(c)
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type fakeDetector struct {
	detections []nutrition.Detection
	err        error
	calls      int
}

func (f *fakeDetector) Name() string { return "fake" }

func (f *fakeDetector) Detect(ctx context.Context, img []byte) ([]nutrition.Detection, error) {
	f.calls++
	return f.detections, f.err
}

type fakeWebsocket struct {
	result *entity.InferenceResult
	err    error
}

func (f *fakeWebsocket) ProcessFrame(ctx context.Context, frame []byte) (*entity.InferenceResult, error) {
	return f.result, f.err
}
func (f *fakeWebsocket) IsConnected() bool { return true }
func (f *fakeWebsocket) Reconnect() error  { return nil }
func (f *fakeWebsocket) CloseConnections() {}

type fakeGemini struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGemini) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}
func (f *fakeGemini) Close() error { return nil }

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return []byte(data), nil
}

type fakeRedis struct {
	hash map[string]string
	err  error
}

func (f *fakeRedis) GetCatalogEntries(ctx context.Context, key string) (map[string]string, error) {
	return f.hash, f.err
}
func (f *fakeRedis) Close() error { return nil }

type fakeRepository struct {
	entries map[string]nutrition.Entry
	err     error
}

func (f *fakeRepository) GetCatalogEntries(ctx context.Context) (map[string]nutrition.Entry, error) {
	return f.entries, f.err
}
