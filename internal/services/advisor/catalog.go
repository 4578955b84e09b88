package advisor

import (
	"strings"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

const (
	SqmPerHa            = 10000.0
	DefaultPricePerKg   = 100.0  // DZD/kg when a crop has no price entry
	DefaultWaterM3PerHa = 5000.0 // m3/ha when a crop has no water entry
	DefaultSoilLabel    = "غير محدد"
)

// CostItem is one per-hectare production cost component, in DZD.
type CostItem struct {
	Name string  `yaml:"name"`
	DZD  float64 `yaml:"dzd"`
}

// Catalog is the static agronomic and market data behind scoring and reports.
// Crops keeps a fixed order: ranking ties are resolved by it.
type Catalog struct {
	Crops        []entities.CropProfile
	CostsPerHa   []CostItem
	PricePerKg   map[string]float64
	WaterM3PerHa map[string]float64
	SoilBonus    map[entities.SoilType]map[string]float64
	SoilLabels   map[entities.SoilType]string

	index map[string]int
}

// DefaultCatalog returns a fresh copy of the built-in data set.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		Crops: []entities.CropProfile{
			{Name: "تمر", WaterNeedRatio: 0.4, CostRatio: 0.7, ProfitRatio: 0.9, YieldKgPerHa: 8000},
			{Name: "عنب", WaterNeedRatio: 0.6, CostRatio: 0.5, ProfitRatio: 0.7, YieldKgPerHa: 15000},
			{Name: "طماطم", WaterNeedRatio: 0.9, CostRatio: 0.6, ProfitRatio: 0.8, YieldKgPerHa: 40000},
			{Name: "بطاطا", WaterNeedRatio: 0.7, CostRatio: 0.5, ProfitRatio: 0.6, YieldKgPerHa: 25000},
			{Name: "قمح_صلب", WaterNeedRatio: 0.5, CostRatio: 0.3, ProfitRatio: 0.5, YieldKgPerHa: 3000},
			{Name: "شعير", WaterNeedRatio: 0.4, CostRatio: 0.3, ProfitRatio: 0.4, YieldKgPerHa: 3500},
			{Name: "زيتون", WaterNeedRatio: 0.3, CostRatio: 0.7, ProfitRatio: 0.8, YieldKgPerHa: 10000},
			{Name: "بقوليات", WaterNeedRatio: 0.5, CostRatio: 0.4, ProfitRatio: 0.6, YieldKgPerHa: 1500},
			{Name: "بطيخ", WaterNeedRatio: 0.7, CostRatio: 0.5, ProfitRatio: 0.7, YieldKgPerHa: 30000},
		},
		CostsPerHa: []CostItem{
			{Name: "seed_dzd", DZD: 50000},
			{Name: "water_dzd", DZD: 70000},
			{Name: "fertilizer_dzd", DZD: 40000},
			{Name: "pesticide_dzd", DZD: 20000},
			{Name: "labor_dzd", DZD: 120000},
		},
		PricePerKg: map[string]float64{
			"تمر": 450, "عنب": 200, "طماطم": 80, "بطاطا": 60,
			"قمح_صلب": 50, "شعير": 40, "زيتون": 350, "بقوليات": 150, "بطيخ": 70,
		},
		WaterM3PerHa: map[string]float64{
			"تمر": 5000, "عنب": 6500, "طماطم": 9000, "بطاطا": 7500,
			"قمح_صلب": 4500, "شعير": 4000, "زيتون": 3000, "بقوليات": 5500, "بطيخ": 7000,
		},
		SoilBonus: map[entities.SoilType]map[string]float64{
			entities.SoilAlluvial: {"تمر": 1.2, "قمح_صلب": 1.1, "طماطم": 1.05},
			entities.SoilBlack:    {"قمح_صلب": 1.15, "بطاطا": 1.1, "بطيخ": 1.0},
			entities.SoilLaterite: {"زيتون": 1.2, "عنب": 1.1, "تمر": 1.0},
			entities.SoilRed:      {"بطاطا": 1.05, "طماطم": 1.1, "قمح_صلب": 1.0},
			entities.SoilYellow:   {"بقوليات": 1.15, "شعير": 1.1, "عنب": 1.0},
		},
		SoilLabels: map[entities.SoilType]string{
			entities.SoilAlluvial: "تربة طينية/رسوبية",
			entities.SoilBlack:    "تربة سوداء",
			entities.SoilLaterite: "تربة لاتيريتية",
			entities.SoilRed:      "تربة حمراء",
			entities.SoilYellow:   "تربة صفراء",
		},
	}
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	c.index = make(map[string]int, len(c.Crops))
	for i, p := range c.Crops {
		c.index[p.Name] = i
	}
}

// Lookup finds a crop by its exact catalog name (surrounding spaces ignored).
func (c *Catalog) Lookup(name string) (entities.CropProfile, bool) {
	i, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return entities.CropProfile{}, false
	}
	return c.Crops[i], true
}

// BaseCostPerHa is the sum of all cost components for one hectare.
func (c *Catalog) BaseCostPerHa() float64 {
	var sum float64
	for _, it := range c.CostsPerHa {
		sum += it.DZD
	}
	return sum
}

func (c *Catalog) Price(crop string) float64 {
	if p, ok := c.PricePerKg[crop]; ok {
		return p
	}
	return DefaultPricePerKg
}

func (c *Catalog) WaterNeed(crop string) float64 {
	if w, ok := c.WaterM3PerHa[crop]; ok {
		return w
	}
	return DefaultWaterM3PerHa
}

// Bonus returns the soil multiplier for a crop, 1.0 when the pair is not listed.
func (c *Catalog) Bonus(soil entities.SoilType, crop string) float64 {
	if b, ok := c.SoilBonus[soil][crop]; ok {
		return b
	}
	return 1.0
}

func (c *Catalog) SoilLabel(soil entities.SoilType) string {
	if l, ok := c.SoilLabels[soil]; ok {
		return l
	}
	return DefaultSoilLabel
}
