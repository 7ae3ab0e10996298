package analysisRepository

const (
	queryGetNutritionProfiles = `
		SELECT
			label,
			calories_per_100g,
			protein_per_100g,
			carbs_per_100g,
			fats_per_100g,
			standard_serving_grams
		FROM nutrition_profiles
		ORDER BY label
	`
)
