package advisor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

const (
	wheat  = "قمح_صلب"
	barley = "شعير"
	grape  = "عنب"
	date   = "تمر"
	tomato = "طماطم"
)

func scoreOf(t *testing.T, recs []entities.SuitabilityEntry, crop string) float64 {
	t.Helper()
	for _, e := range recs {
		if e.Crop == crop {
			return e.Score
		}
	}
	t.Fatalf("crop %s missing from ranking", crop)
	return 0
}

func TestScoreBlackSoilRanking(t *testing.T) {
	s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
	got := s.Score(ScoreInput{Soil: entities.SoilBlack, AreaSqm: 10000, Preference: PrefNone})

	want := []entities.SuitabilityEntry{
		{Crop: wheat, Score: 61.5},
		{Crop: date, Score: 60.4},
		{Crop: "زيتون", Score: 59.6},
		{Crop: "بقوليات", Score: 55.6},
		{Crop: grape, Score: 54.0},
		{Crop: barley, Score: 54.0},
		{Crop: "بطاطا", Score: 52.2},
		{Crop: "بطيخ", Score: 51.6},
		{Crop: tomato, Score: 47.6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreSoilBonusRaisesWheat(t *testing.T) {
	s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
	black := s.Score(ScoreInput{Soil: entities.SoilBlack})
	yellow := s.Score(ScoreInput{Soil: entities.SoilYellow})

	assert.Equal(t, 61.5, scoreOf(t, black, wheat))
	assert.Equal(t, 54.8, scoreOf(t, yellow, wheat))
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer(DefaultCatalog(), LegacyEfficiencyWeight)
	hist := &entities.HistoricalAnalysis{WaterEfficiencyRatio: 500}

	for _, soil := range entities.SoilTypes {
		for _, pref := range []Preference{PrefNone, PrefHighProfit, PrefLowWater, PrefImproveEfficiency} {
			recs := s.Score(ScoreInput{Soil: soil, Preference: pref, Historical: hist, DesiredCrop: date})
			require.Len(t, recs, 9)
			for _, e := range recs {
				assert.GreaterOrEqual(t, e.Score, 0.0)
				assert.LessOrEqual(t, e.Score, 100.0)
			}
		}
	}
}

func TestScoreDesiredCropIncreases(t *testing.T) {
	s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
	for _, p := range DefaultCatalog().Crops {
		without := s.Score(ScoreInput{Soil: entities.SoilRed})
		with := s.Score(ScoreInput{Soil: entities.SoilRed, DesiredCrop: "  " + p.Name + " "})
		assert.Greater(t, scoreOf(t, with, p.Name), scoreOf(t, without, p.Name), p.Name)
	}
}

func TestScorePreviousCropDecreases(t *testing.T) {
	s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
	for _, p := range DefaultCatalog().Crops {
		without := s.Score(ScoreInput{Soil: entities.SoilLaterite})
		with := s.Score(ScoreInput{Soil: entities.SoilLaterite, PrevCrops: ParsePrevCrops("x, " + p.Name + " ,")})
		assert.Less(t, scoreOf(t, with, p.Name), scoreOf(t, without, p.Name), p.Name)
	}
}

func TestScoreImproveEfficiency(t *testing.T) {
	hist := &entities.HistoricalAnalysis{WaterEfficiencyRatio: 2.0}

	t.Run("default weight", func(t *testing.T) {
		s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
		recs := s.Score(ScoreInput{Soil: entities.SoilBlack, Preference: PrefImproveEfficiency, Historical: hist})
		assert.Equal(t, 66.7, scoreOf(t, recs, wheat))
	})

	t.Run("legacy weight", func(t *testing.T) {
		s := NewScorer(DefaultCatalog(), LegacyEfficiencyWeight)
		recs := s.Score(ScoreInput{Soil: entities.SoilBlack, Preference: PrefImproveEfficiency, Historical: hist})
		assert.Equal(t, 71.8, scoreOf(t, recs, wheat))
	})

	t.Run("no history means no adjustment", func(t *testing.T) {
		s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
		recs := s.Score(ScoreInput{Soil: entities.SoilBlack, Preference: PrefImproveEfficiency})
		assert.Equal(t, 61.5, scoreOf(t, recs, wheat))
	})

	t.Run("history ignored for other preferences", func(t *testing.T) {
		s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
		recs := s.Score(ScoreInput{Soil: entities.SoilBlack, Preference: PrefNone, Historical: hist})
		assert.Equal(t, 61.5, scoreOf(t, recs, wheat))
	})
}

func TestScoreHighProfitFavoursDates(t *testing.T) {
	s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
	recs := s.Score(ScoreInput{Soil: entities.SoilAlluvial, Preference: PrefHighProfit})
	assert.Equal(t, date, recs[0].Crop)
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(DefaultCatalog(), DefaultEfficiencyWeight)
	in := ScoreInput{Soil: entities.SoilYellow, Preference: PrefLowWater, PrevCrops: []string{barley}}
	first := s.Score(in)
	for i := 0; i < 20; i++ {
		assert.Empty(t, cmp.Diff(first, s.Score(in)))
	}
}

func TestParsePrevCrops(t *testing.T) {
	assert.Equal(t, []string{"wheat", "olive"}, ParsePrevCrops(" Wheat,, OLIVE ,"))
	assert.Empty(t, ParsePrevCrops(""))
	assert.Empty(t, ParsePrevCrops(" , ,"))
}

func TestParsePreference(t *testing.T) {
	cases := map[string]Preference{
		"زيادة الأرباح المالية": PrefHighProfit,
		"استهلاك ماء منخفض":     PrefLowWater,
		"تحسين كفاءة الأداء":    PrefImproveEfficiency,
		"لا شيء (معايير عامة)":  PrefNone,
		"low_water":             PrefLowWater,
		"":                      PrefNone,
		"something else":        PrefNone,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParsePreference(in), in)
	}
}
