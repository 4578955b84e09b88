package advisor

import (
	"math"
	"sort"
	"strings"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

// Preference is the farmer's declared priority, normalized to an internal tag.
type Preference string

const (
	PrefNone              Preference = "none"
	PrefHighProfit        Preference = "high_profit"
	PrefLowWater          Preference = "low_water"
	PrefImproveEfficiency Preference = "improve_efficiency"
)

// Two deployments of the service disagreed on how strongly a past season's
// water efficiency should count; both values stay available.
const (
	DefaultEfficiencyWeight = 0.05
	LegacyEfficiencyWeight  = 0.10
)

const (
	weightProfit     = 0.4
	weightWater      = 0.3
	weightCost       = 0.3
	preferenceWeight = 0.3
	rotationPenalty  = 0.8
	desiredBoost     = 1.3
	scoreScale       = 80.0
	scoreOffset      = 10.0
)

var preferenceOptions = map[string]Preference{
	"زيادة الأرباح المالية": PrefHighProfit,
	"استهلاك ماء منخفض":     PrefLowWater,
	"تحسين كفاءة الأداء":    PrefImproveEfficiency,
	"لا شيء (معايير عامة)":  PrefNone,

	string(PrefHighProfit):        PrefHighProfit,
	string(PrefLowWater):          PrefLowWater,
	string(PrefImproveEfficiency): PrefImproveEfficiency,
	string(PrefNone):              PrefNone,
}

// ParsePreference maps a UI label or tag to a Preference; unknown values mean none.
func ParsePreference(s string) Preference {
	if p, ok := preferenceOptions[strings.TrimSpace(s)]; ok {
		return p
	}
	return PrefNone
}

// ParsePrevCrops splits a comma separated list, trimming and lower-casing each
// name and dropping empty tokens.
func ParsePrevCrops(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToLower(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type ScoreInput struct {
	Soil        entities.SoilType
	AreaSqm     float64 // not used by the formula
	PrevCrops   []string
	Preference  Preference
	DesiredCrop string
	Historical  *entities.HistoricalAnalysis
}

type Scorer struct {
	catalog          *Catalog
	efficiencyWeight float64
}

func NewScorer(c *Catalog, efficiencyWeight float64) *Scorer {
	return &Scorer{catalog: c, efficiencyWeight: efficiencyWeight}
}

// Score ranks every catalog crop, best first. Equal scores keep catalog order.
func (s *Scorer) Score(in ScoreInput) []entities.SuitabilityEntry {
	prev := make(map[string]bool, len(in.PrevCrops))
	for _, c := range in.PrevCrops {
		prev[strings.ToLower(c)] = true
	}
	desired := strings.TrimSpace(in.DesiredCrop)

	out := make([]entities.SuitabilityEntry, 0, len(s.catalog.Crops))
	for _, p := range s.catalog.Crops {
		base := weightProfit*p.ProfitRatio + weightWater*(1-p.WaterNeedRatio) + weightCost*(1-p.CostRatio)
		base *= s.catalog.Bonus(in.Soil, p.Name)

		switch {
		case in.Preference == PrefHighProfit:
			base *= 1 + p.ProfitRatio*preferenceWeight
		case in.Preference == PrefLowWater:
			base *= 1 + (1-p.WaterNeedRatio)*preferenceWeight
		case in.Preference == PrefImproveEfficiency && in.Historical != nil:
			base *= 1 + in.Historical.WaterEfficiencyRatio*s.efficiencyWeight
		}

		if prev[strings.ToLower(p.Name)] {
			base *= rotationPenalty
		}
		if desired != "" && strings.EqualFold(strings.TrimSpace(p.Name), desired) {
			base *= desiredBoost
		}

		out = append(out, entities.SuitabilityEntry{Crop: p.Name, Score: finalScore(base)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func finalScore(base float64) float64 {
	v := math.Min(100, math.Max(0, base*scoreScale+scoreOffset))
	return math.Round(v*10) / 10
}
