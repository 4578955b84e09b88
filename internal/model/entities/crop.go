package entities

// CropProfile holds the agronomic ratios used by the suitability scorer.
// Ratios are in [0,1]; yield is kg per hectare.
type CropProfile struct {
	Name           string  `json:"name" yaml:"name"`
	WaterNeedRatio float64 `json:"water_need_ratio" yaml:"water_need_ratio"`
	CostRatio      float64 `json:"cost_ratio" yaml:"cost_ratio"`
	ProfitRatio    float64 `json:"profit_ratio" yaml:"profit_ratio"`
	YieldKgPerHa   float64 `json:"yield_kg_per_ha" yaml:"yield_kg_per_ha"`
}

// SuitabilityEntry is one ranked crop in an analyze_soil response.
type SuitabilityEntry struct {
	Crop  string  `json:"crop"`
	Score float64 `json:"score"`
}
