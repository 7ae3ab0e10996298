package analysisRepository

import (
	contextPkg "NutriLens/pkg/context"
	"NutriLens/pkg/nutrition"
	"context"
	"database/sql"
	"github.com/sirupsen/logrus"
)

type NutritionProfileDB struct {
	Label                sql.NullString  `db:"label"`
	CaloriesPer100g      sql.NullFloat64 `db:"calories_per_100g"`
	ProteinPer100g       sql.NullFloat64 `db:"protein_per_100g"`
	CarbsPer100g         sql.NullFloat64 `db:"carbs_per_100g"`
	FatsPer100g          sql.NullFloat64 `db:"fats_per_100g"`
	StandardServingGrams sql.NullFloat64 `db:"standard_serving_grams"`
}

// GetCatalogEntries reads the whole nutrition_profiles table. NULL columns
// are left out of the entry so validation reports them as missing.
func (r *repository) GetCatalogEntries(c context.Context) (map[string]nutrition.Entry, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []NutritionProfileDB

	if err := r.q.SelectContext(c, &rows, queryGetNutritionProfiles); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCatalogEntries execution err")
		return nil, err
	}

	entries := make(map[string]nutrition.Entry, len(rows))
	for _, row := range rows {
		label := row.Label.String
		if _, dup := entries[label]; dup {
			return nil, &nutrition.DataLoadError{Label: label, Reason: "duplicate label"}
		}
		entries[label] = r.makeEntry(row)
	}

	r.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"rows":       len(rows),
	}).Debug("GetCatalogEntries fetched nutrition profiles")

	return entries, nil
}

func (r *repository) makeEntry(row NutritionProfileDB) nutrition.Entry {
	entry := nutrition.Entry{}
	columns := map[string]sql.NullFloat64{
		nutrition.FieldCalories: row.CaloriesPer100g,
		nutrition.FieldProtein:  row.ProteinPer100g,
		nutrition.FieldCarbs:    row.CarbsPer100g,
		nutrition.FieldFats:     row.FatsPer100g,
		nutrition.FieldServing:  row.StandardServingGrams,
	}
	for field, col := range columns {
		if col.Valid {
			entry[field] = col.Float64
		}
	}
	return entry
}
