package nutrition

import "image"

// Profile is the nutrition reference for one food label.
type Profile struct {
	CaloriesPer100g      float64 `json:"calories_per_100g" db:"calories_per_100g"`
	ProteinPer100g       float64 `json:"protein_per_100g" db:"protein_per_100g"`
	CarbsPer100g         float64 `json:"carbs_per_100g" db:"carbs_per_100g"`
	FatsPer100g          float64 `json:"fats_per_100g" db:"fats_per_100g"`
	StandardServingGrams float64 `json:"standard_serving_grams" db:"standard_serving_grams"`
}

// Totals is the estimated nutrition of a whole image. Grams is the mass of
// every scored detection.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Grams    float64 `json:"grams"`
}

func (t Totals) add(o Totals) Totals {
	return Totals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fats:     t.Fats + o.Fats,
		Grams:    t.Grams + o.Grams,
	}
}

// Detection is one detector output. Only the class is used for nutrition;
// confidence and box are carried for display.
type Detection struct {
	ClassID    int             `json:"class_id"`
	Label      string          `json:"label,omitempty"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Result is what Analyze hands back to callers.
type Result struct {
	Totals    Totals
	Summaries []string
	Unscored  []string
}
