package advisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

// AnalyzeHistorical turns a past season's yield and water use into a water
// efficiency ratio: (kg per hectare) per cubic metre of water.
func AnalyzeHistorical(actualYieldKg, areaSqm, actualWaterM3 float64, crop string, now time.Time) (entities.HistoricalAnalysis, error) {
	if !finite(actualYieldKg, areaSqm, actualWaterM3) {
		return entities.HistoricalAnalysis{}, fmt.Errorf("%w: actual_yield, area_sqm and actual_water must be finite", ErrValidation)
	}
	if actualWaterM3 <= 0 || actualYieldKg <= 0 {
		return entities.HistoricalAnalysis{}, fmt.Errorf("%w: actual_yield and actual_water must be positive", ErrValidation)
	}
	if areaSqm <= 0 {
		return entities.HistoricalAnalysis{}, fmt.Errorf("%w: area_sqm must be positive", ErrValidation)
	}

	areaHa := areaSqm / SqmPerHa
	ratio := (actualYieldKg / areaHa) / actualWaterM3
	crop = strings.TrimSpace(crop)

	return entities.HistoricalAnalysis{
		PreviousCrop:         crop,
		WaterEfficiencyRatio: ratio,
		Message:              fmt.Sprintf("كفاءة استخدام المياه لمحصول %s: %.2f كغم/هكتار لكل م³", crop, ratio),
		UpdatedAt:            now,
	}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
