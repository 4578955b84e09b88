package app

import (
	"github.com/LeonardoBeccarini/agri_advisor/internal/model"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
)

// Defaults applied when a form field is missing.
const (
	DefaultAreaSqm  = 1000.0
	DefaultSoil     = model.SoilType("Alluvial_Soil")
	DefaultLocation = "الموقع الافتراضي"
	// noImageHint matches no soil keyword, so classification is random.
	noImageHint = "random.jpg"
)

type planResponse struct {
	Report string         `json:"report"`
	Plan   advisor.Report `json:"plan"`
}

type historicalResponse struct {
	Message  string                   `json:"message"`
	Analysis model.HistoricalAnalysis `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}
