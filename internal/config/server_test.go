package config

import (
	"NutriLens/pkg/nutrition"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

const catalogJSON = `{
	"apple": {"calories_per_100g": 52, "protein_per_100g": 0.3, "carbs_per_100g": 14, "fats_per_100g": 0.2, "standard_serving_grams": 150}
}`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestWithCatalogFromFile(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "file")
	t.Setenv("CATALOG_PATH", writeFile(t, "nutrition_db.json", catalogJSON))
	t.Setenv("DETECTOR_LABELS", "apple,banana")

	s := &Server{log: quietLogger()}
	if err := WithCatalog()(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.store.Catalog().Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.store.Catalog().Len())
	}
	if len(s.labels) != 2 || s.labels[1] != "banana" {
		t.Fatalf("unexpected labels %v", s.labels)
	}
}

func TestWithCatalogRejectsInvalidFile(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "")
	t.Setenv("CATALOG_PATH", writeFile(t, "nutrition_db.json", `{"apple": {"calories_per_100g": 52}}`))

	s := &Server{log: quietLogger()}
	err := WithCatalog()(s)
	if !errors.Is(err, nutrition.ErrDataLoad) {
		t.Fatalf("expected ErrDataLoad, got %v", err)
	}
}

func TestWithDetector(t *testing.T) {
	store := nutrition.NewStore(mustCatalog(t))

	tests := []struct {
		name     string
		detector string
		minConf  string
		wantErr  bool
		wantName string
	}{
		{"yolo by default", "", "", false, "yolo"},
		{"none", "none", "", false, ""},
		{"unknown", "sam", "", true, ""},
		{"bad confidence", "none", "1.5", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DETECTOR", tt.detector)
			t.Setenv("DETECTION_MIN_CONFIDENCE", tt.minConf)

			s := &Server{log: quietLogger(), store: store}
			err := WithDetector()(s)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantName == "" && s.detector != nil {
				t.Fatalf("expected no detector, got %s", s.detector.Name())
			}
			if tt.wantName != "" && (s.detector == nil || s.detector.Name() != tt.wantName) {
				t.Fatalf("expected detector %s", tt.wantName)
			}
			if s.minConfidence != 0.3 {
				t.Fatalf("expected default min confidence 0.3, got %v", s.minConfidence)
			}
		})
	}
}

func TestWithDetectorRequiresCatalog(t *testing.T) {
	if err := WithDetector()(&Server{log: quietLogger()}); err == nil {
		t.Fatal("expected error without a catalog")
	}
}

func TestDetectorLabelsFromFile(t *testing.T) {
	t.Setenv("DETECTOR_LABELS", "")
	t.Setenv("DETECTOR_LABELS_PATH", writeFile(t, "labels.txt", "apple\nbanana\n\negg\n"))

	labels, err := detectorLabels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(labels, ",") != "apple,banana,egg" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestNewServerRequiresCatalog(t *testing.T) {
	_, err := NewServer(WithFiber(fiber.New()), WithLogger(quietLogger()))
	if err == nil {
		t.Fatal("expected error without a catalog")
	}
}

func TestHealthCheck(t *testing.T) {
	s := &Server{
		engine: fiber.New(),
		log:    quietLogger(),
		store:  nutrition.NewStore(mustCatalog(t)),
	}
	s.setupHealthCheck()

	resp, err := s.engine.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestValidatorUsesJSONNames(t *testing.T) {
	type payload struct {
		ImageBase64 string `json:"image_base64" validate:"required"`
	}

	err := NewValidator().Struct(payload{})
	if err == nil || !strings.Contains(err.Error(), "image_base64") {
		t.Fatalf("expected error naming image_base64, got %v", err)
	}
}

func mustCatalog(t *testing.T) *nutrition.Catalog {
	t.Helper()
	c, err := nutrition.Load(strings.NewReader(catalogJSON))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestRegisterHandlerAppliesMiddlewareToEveryRoute(t *testing.T) {
	logger := quietLogger()
	s := &Server{
		engine: fiber.New(),
		log:    logger,
		store:  nutrition.NewStore(mustCatalog(t)),
	}
	for _, opt := range []ServerOption{WithValidator(NewValidator()), WithMiddleware(), WithUtils()} {
		if err := opt(s); err != nil {
			t.Fatalf("apply option: %v", err)
		}
	}
	s.RegisterHandler()

	for _, path := range []string{"/", "/api/v1/nutrition/catalog"} {
		resp, err := s.engine.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Fatalf("%s: expected X-Request-ID header", path)
		}
	}
}
