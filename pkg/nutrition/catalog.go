package nutrition

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	FieldCalories = "calories_per_100g"
	FieldProtein  = "protein_per_100g"
	FieldCarbs    = "carbs_per_100g"
	FieldFats     = "fats_per_100g"
	FieldServing  = "standard_serving_grams"
)

var (
	nutrientFields = []string{FieldCalories, FieldProtein, FieldCarbs, FieldFats}
	requiredFields = []string{FieldCalories, FieldProtein, FieldCarbs, FieldFats, FieldServing}
)

// Entry is one undecoded catalog record as read from a source, keyed by
// field name. Missing fields are absent keys or nil values.
type Entry map[string]any

// Catalog maps food labels to their profiles. It is never mutated after
// construction and is safe for concurrent readers.
type Catalog struct {
	profiles map[string]Profile
	labels   []string
}

// Load reads a JSON object of label -> entry and validates every entry.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataLoadError{Reason: "cannot read source", Err: err}
	}

	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, loadErr("", "", "source must be a JSON object of label to entry")
	}

	entries := make(map[string]Entry)
	var entryErr error
	iter.ReadMapCB(func(it *jsoniter.Iterator, label string) bool {
		if _, dup := entries[label]; dup {
			entryErr = loadErr(label, "", "duplicate label")
			return false
		}
		if it.WhatIsNext() != jsoniter.ObjectValue {
			entryErr = loadErr(label, "", "entry must be a JSON object")
			return false
		}
		var entry Entry
		it.ReadVal(&entry)
		if it.Error != nil {
			entryErr = &DataLoadError{Label: label, Reason: "malformed entry", Err: it.Error}
			return false
		}
		entries[label] = entry
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}
	if iter.Error != nil {
		return nil, &DataLoadError{Reason: "malformed JSON", Err: iter.Error}
	}

	// only whitespace may follow the top-level object
	if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error != io.EOF {
		return nil, loadErr("", "", "trailing data after catalog object")
	}

	return NewCatalog(entries)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Reason: fmt.Sprintf("cannot open %s", path), Err: err}
	}
	defer f.Close()

	return Load(f)
}

// DecodeEntry decodes a single JSON entry, as stored by sources that keep
// one record per key.
func DecodeEntry(label string, data []byte) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry == nil {
		return nil, &DataLoadError{Label: label, Reason: "entry must be a JSON object", Err: err}
	}
	return entry, nil
}

// NewCatalog validates decoded entries and builds a catalog. Entries are
// checked in label order so the reported failure is stable.
func NewCatalog(entries map[string]Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, loadErr("", "", "catalog has no entries")
	}

	labels := make([]string, 0, len(entries))
	for label := range entries {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	profiles := make(map[string]Profile, len(entries))
	for _, label := range labels {
		if label == "" {
			return nil, loadErr(label, "", "label must not be empty")
		}
		p, err := entries[label].profile(label)
		if err != nil {
			return nil, err
		}
		profiles[label] = p
	}

	return &Catalog{profiles: profiles, labels: labels}, nil
}

func (e Entry) profile(label string) (Profile, error) {
	values := make(map[string]float64, len(requiredFields))
	for _, field := range requiredFields {
		v, err := e.number(label, field)
		if err != nil {
			return Profile{}, err
		}
		values[field] = v
	}

	for _, field := range nutrientFields {
		if values[field] < 0 {
			return Profile{}, loadErr(label, field, fmt.Sprintf("must be non-negative, got %v", values[field]))
		}
	}
	if values[FieldServing] <= 0 {
		return Profile{}, loadErr(label, FieldServing, fmt.Sprintf("must be positive, got %v", values[FieldServing]))
	}

	return Profile{
		CaloriesPer100g:      values[FieldCalories],
		ProteinPer100g:       values[FieldProtein],
		CarbsPer100g:         values[FieldCarbs],
		FatsPer100g:          values[FieldFats],
		StandardServingGrams: values[FieldServing],
	}, nil
}

func (e Entry) number(label, field string) (float64, error) {
	raw, ok := e[field]
	if !ok || raw == nil {
		return 0, loadErr(label, field, "missing required field")
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	default:
		return 0, loadErr(label, field, fmt.Sprintf("must be a number, got %T", raw))
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, loadErr(label, field, "must be a finite number")
	}
	return v, nil
}

// Lookup never fails; unknown labels are reported as absent.
func (c *Catalog) Lookup(label string) (Profile, bool) {
	if c == nil {
		return Profile{}, false
	}
	p, ok := c.profiles[label]
	return p, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.profiles)
}

// Labels returns the catalog keys in sorted order.
func (c *Catalog) Labels() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Missing returns the distinct labels that have no catalog entry, sorted.
func (c *Catalog) Missing(labels []string) []string {
	seen := make(map[string]struct{})
	var missing []string
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		if _, ok := c.Lookup(label); !ok {
			missing = append(missing, label)
		}
	}
	sort.Strings(missing)
	return missing
}
