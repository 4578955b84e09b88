package model

import (
	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
	"github.com/LeonardoBeccarini/agri_advisor/internal/model/messages"
)

// Alias dei tipi di dominio condivisi tra i servizi

type (
	SoilType           = entities.SoilType
	CropProfile        = entities.CropProfile
	SuitabilityEntry   = entities.SuitabilityEntry
	HistoricalAnalysis = entities.HistoricalAnalysis
	AdvisoryEvent      = messages.AdvisoryEvent
	HarvestReport      = messages.HarvestReport
)
