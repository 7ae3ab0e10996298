package nutrition

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const appleCatalog = `{
	"apple": {
		"calories_per_100g": 52,
		"protein_per_100g": 0.3,
		"carbs_per_100g": 14,
		"fats_per_100g": 0.2,
		"standard_serving_grams": 150
	}
}`

func mustLoad(t *testing.T, src string) *Catalog {
	t.Helper()
	c, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestLoadValidCatalog(t *testing.T) {
	c := mustLoad(t, appleCatalog)

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	p, ok := c.Lookup("apple")
	if !ok {
		t.Fatalf("apple not found")
	}
	want := Profile{CaloriesPer100g: 52, ProteinPer100g: 0.3, CarbsPer100g: 14, FatsPer100g: 0.2, StandardServingGrams: 150}
	if p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}
}

func TestLoadRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		label string
		field string
	}{
		{
			name:  "zero serving",
			src:   `{"apple": {"calories_per_100g": 52, "protein_per_100g": 0.3, "carbs_per_100g": 14, "fats_per_100g": 0.2, "standard_serving_grams": 0}}`,
			label: "apple",
			field: FieldServing,
		},
		{
			name:  "negative serving",
			src:   `{"rice": {"calories_per_100g": 130, "protein_per_100g": 2.7, "carbs_per_100g": 28, "fats_per_100g": 0.3, "standard_serving_grams": -10}}`,
			label: "rice",
			field: FieldServing,
		},
		{
			name:  "negative nutrient",
			src:   `{"egg": {"calories_per_100g": 155, "protein_per_100g": 13, "carbs_per_100g": 1.1, "fats_per_100g": -1, "standard_serving_grams": 50}}`,
			label: "egg",
			field: FieldFats,
		},
		{
			name:  "missing field",
			src:   `{"egg": {"calories_per_100g": 155, "carbs_per_100g": 1.1, "fats_per_100g": 11, "standard_serving_grams": 50}}`,
			label: "egg",
			field: FieldProtein,
		},
		{
			name:  "null field",
			src:   `{"egg": {"calories_per_100g": null, "protein_per_100g": 13, "carbs_per_100g": 1.1, "fats_per_100g": 11, "standard_serving_grams": 50}}`,
			label: "egg",
			field: FieldCalories,
		},
		{
			name:  "wrong type",
			src:   `{"egg": {"calories_per_100g": "155", "protein_per_100g": 13, "carbs_per_100g": 1.1, "fats_per_100g": 11, "standard_serving_grams": 50}}`,
			label: "egg",
			field: FieldCalories,
		},
		{
			name:  "entry not an object",
			src:   `{"egg": 42}`,
			label: "egg",
		},
		{
			name:  "duplicate label",
			src:   appleCatalog[:len(appleCatalog)-2] + `, "apple": {"calories_per_100g": 1, "protein_per_100g": 1, "carbs_per_100g": 1, "fats_per_100g": 1, "standard_serving_grams": 1}}`,
			label: "apple",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("expected error, got catalog with %d entries", c.Len())
			}
			if c != nil {
				t.Fatalf("expected no catalog on failure")
			}

			var loadErr *DataLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected DataLoadError, got %T: %v", err, err)
			}
			if loadErr.Label != tt.label {
				t.Fatalf("expected label %q, got %q", tt.label, loadErr.Label)
			}
			if loadErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, loadErr.Field)
			}
			if !errors.Is(err, ErrDataLoad) {
				t.Fatalf("expected error to match ErrDataLoad")
			}
			if !strings.Contains(err.Error(), tt.label) {
				t.Fatalf("error %q does not name label %q", err.Error(), tt.label)
			}
		})
	}
}

func TestLoadRejectsBadSources(t *testing.T) {
	sources := []string{
		``, `[]`, `null`, `{}`, `{"apple": {`,
		appleCatalog + ` {"x": 1} garbage`,
		appleCatalog + ` garbage`,
		appleCatalog + `}`,
	}
	for _, src := range sources {
		if _, err := Load(strings.NewReader(src)); !errors.Is(err, ErrDataLoad) {
			t.Fatalf("source %q: expected DataLoadError, got %v", src, err)
		}
	}

	if _, err := Load(strings.NewReader(appleCatalog + " \n\t ")); err != nil {
		t.Fatalf("trailing whitespace should be accepted, got %v", err)
	}
}

func TestLoadNamesMalformedEntry(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `{"egg": {"calories_per_100g": 155,, "protein_per_100g": 13}}`},
		{"out of range number", `{"egg": {"calories_per_100g": 1e400, "protein_per_100g": 13}}`},
		{"truncated entry", `{"egg": {"calories_per_100g": 155`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src))
			var loadErr *DataLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected DataLoadError, got %v", err)
			}
			if loadErr.Label != "egg" {
				t.Fatalf("expected egg to be named, got %q (%v)", loadErr.Label, err)
			}
		})
	}
}

func TestLoadReportsFirstBadLabelInOrder(t *testing.T) {
	src := `{
		"zucchini": {"calories_per_100g": 17, "protein_per_100g": 1.2, "carbs_per_100g": 3.1, "fats_per_100g": 0.3, "standard_serving_grams": 0},
		"banana": {"calories_per_100g": 89, "protein_per_100g": 1.1, "carbs_per_100g": 23, "fats_per_100g": 0.3}
	}`

	for i := 0; i < 5; i++ {
		_, err := Load(strings.NewReader(src))
		var loadErr *DataLoadError
		if !errors.As(err, &loadErr) || loadErr.Label != "banana" {
			t.Fatalf("expected banana to be reported, got %v", err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nutrition_db.json")
	if err := os.WriteFile(path, []byte(appleCatalog), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Lookup("apple"); !ok {
		t.Fatalf("apple not found")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrDataLoad) {
		t.Fatalf("expected DataLoadError for missing file, got %v", err)
	}
}

func TestNewCatalogFromEntries(t *testing.T) {
	c, err := NewCatalog(map[string]Entry{
		"rice": {FieldCalories: 130.0, FieldProtein: 2.7, FieldCarbs: 28, FieldFats: int64(0), FieldServing: 180.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p, _ := c.Lookup("rice"); p.CarbsPer100g != 28 || p.StandardServingGrams != 180 {
		t.Fatalf("unexpected profile %+v", p)
	}

	_, err = NewCatalog(map[string]Entry{"": {FieldServing: 1.0}})
	if !errors.Is(err, ErrDataLoad) {
		t.Fatalf("expected empty label to be rejected, got %v", err)
	}
}

func TestDecodeEntry(t *testing.T) {
	entry, err := DecodeEntry("apple", []byte(`{"calories_per_100g": 52}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry[FieldCalories] != 52.0 {
		t.Fatalf("unexpected entry %v", entry)
	}

	_, err = DecodeEntry("apple", []byte(`"oops"`))
	var loadErr *DataLoadError
	if !errors.As(err, &loadErr) || loadErr.Label != "apple" {
		t.Fatalf("expected DataLoadError for apple, got %v", err)
	}
}

func TestLookupUnknownLabel(t *testing.T) {
	c := mustLoad(t, appleCatalog)

	if _, ok := c.Lookup("banana"); ok {
		t.Fatalf("banana should be absent")
	}

	var nilCatalog *Catalog
	if _, ok := nilCatalog.Lookup("apple"); ok {
		t.Fatalf("nil catalog should have no entries")
	}
}

func TestMissingLabels(t *testing.T) {
	c := mustLoad(t, appleCatalog)

	missing := c.Missing([]string{"banana", "apple", "pizza", "banana"})
	if len(missing) != 2 || missing[0] != "banana" || missing[1] != "pizza" {
		t.Fatalf("unexpected missing labels %v", missing)
	}
}
