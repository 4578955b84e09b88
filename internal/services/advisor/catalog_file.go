package advisor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

// catalogFile is the on-disk layout accepted by LoadCatalog.
// Sections left empty keep the built-in values.
type catalogFile struct {
	Crops []struct {
		entities.CropProfile `yaml:",inline"`
		PricePerKg           float64 `yaml:"price_per_kg"`
		WaterM3PerHa         float64 `yaml:"water_m3_per_ha"`
	} `yaml:"crops"`
	CostsPerHa []CostItem                             `yaml:"costs_per_ha"`
	SoilBonus  map[entities.SoilType]map[string]float64 `yaml:"soil_bonus"`
	SoilLabels map[entities.SoilType]string             `yaml:"soil_labels"`
}

// LoadCatalog reads a YAML catalog override. An empty path returns the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseCatalog(raw, c)
}

func parseCatalog(raw []byte, c *Catalog) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	if len(f.Crops) > 0 {
		c.Crops = c.Crops[:0]
		c.PricePerKg = make(map[string]float64, len(f.Crops))
		c.WaterM3PerHa = make(map[string]float64, len(f.Crops))
		for _, fc := range f.Crops {
			c.Crops = append(c.Crops, fc.CropProfile)
			if fc.PricePerKg > 0 {
				c.PricePerKg[fc.Name] = fc.PricePerKg
			}
			if fc.WaterM3PerHa > 0 {
				c.WaterM3PerHa[fc.Name] = fc.WaterM3PerHa
			}
		}
	}
	if len(f.CostsPerHa) > 0 {
		c.CostsPerHa = f.CostsPerHa
	}
	if len(f.SoilBonus) > 0 {
		c.SoilBonus = f.SoilBonus
	}
	for soil, label := range f.SoilLabels {
		c.SoilLabels[soil] = label
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.reindex()
	return c, nil
}

// Validate checks ratios are in [0,1], yields and costs are positive and names are unique.
func (c *Catalog) Validate() error {
	if len(c.Crops) == 0 {
		return fmt.Errorf("catalog: no crops")
	}
	seen := make(map[string]bool, len(c.Crops))
	for _, p := range c.Crops {
		if p.Name == "" {
			return fmt.Errorf("catalog: crop without name")
		}
		if seen[p.Name] {
			return fmt.Errorf("catalog: duplicate crop %q", p.Name)
		}
		seen[p.Name] = true
		for _, r := range []float64{p.WaterNeedRatio, p.CostRatio, p.ProfitRatio} {
			if r < 0 || r > 1 {
				return fmt.Errorf("catalog: crop %q has ratio %.2f outside [0,1]", p.Name, r)
			}
		}
		if p.YieldKgPerHa <= 0 {
			return fmt.Errorf("catalog: crop %q needs a positive yield", p.Name)
		}
	}
	for _, it := range c.CostsPerHa {
		if it.DZD < 0 {
			return fmt.Errorf("catalog: negative cost %q", it.Name)
		}
	}
	for soil := range c.SoilBonus {
		if !soil.Valid() {
			return fmt.Errorf("catalog: unknown soil %q in bonus table", soil)
		}
	}
	return nil
}
