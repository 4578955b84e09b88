package advisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
)

type ReportInput struct {
	Crop     string
	AreaSqm  float64
	Soil     entities.SoilType
	Location string
	Score    float64
}

// Report is the seasonal financial projection for one crop. All money is DZD.
type Report struct {
	Crop            string    `json:"crop"`
	Location        string    `json:"location"`
	SoilLabel       string    `json:"soil_label"`
	Score           float64   `json:"score"`
	AreaSqm         float64   `json:"area_sqm"`
	AreaHa          float64   `json:"area_ha"`
	TotalCost       float64   `json:"total_cost"`
	ExpectedYieldKg float64   `json:"expected_yield_kg"`
	PricePerKg      float64   `json:"price_per_kg"`
	TotalRevenue    float64   `json:"total_revenue"`
	NetProfit       float64   `json:"net_profit"`
	TotalWaterM3    float64   `json:"total_water_m3"`
	GeneratedAt     time.Time `json:"generated_at"`
	Text            string    `json:"-"`
}

type Reporter struct {
	catalog *Catalog
	now     func() time.Time
	printer *message.Printer
}

func NewReporter(c *Catalog, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{catalog: c, now: now, printer: message.NewPrinter(language.English)}
}

// Generate computes the projection and renders it. A crop missing from the
// catalog yields ErrUnknownCrop and no report.
func (r *Reporter) Generate(in ReportInput) (Report, error) {
	crop := strings.TrimSpace(in.Crop)
	details, ok := r.catalog.Lookup(crop)
	if !ok {
		return Report{}, fmt.Errorf("%w %q", ErrUnknownCrop, crop)
	}
	if !finite(in.AreaSqm) {
		return Report{}, fmt.Errorf("%w: area_sqm must be finite", ErrValidation)
	}

	areaHa := in.AreaSqm / SqmPerHa
	rep := Report{
		Crop:            details.Name,
		Location:        in.Location,
		SoilLabel:       r.catalog.SoilLabel(in.Soil),
		Score:           in.Score,
		AreaSqm:         in.AreaSqm,
		AreaHa:          areaHa,
		TotalCost:       r.catalog.BaseCostPerHa() * areaHa,
		ExpectedYieldKg: details.YieldKgPerHa * areaHa,
		PricePerKg:      r.catalog.Price(details.Name),
		TotalWaterM3:    r.catalog.WaterNeed(details.Name) * areaHa,
		GeneratedAt:     r.now(),
	}
	rep.TotalRevenue = rep.ExpectedYieldKg * rep.PricePerKg
	rep.NetProfit = rep.TotalRevenue - rep.TotalCost
	rep.Text = r.render(rep)
	return rep, nil
}

// ScoreFor returns the score recorded for crop in recs, 0 when absent.
func ScoreFor(recs []entities.SuitabilityEntry, crop string) float64 {
	for _, e := range recs {
		if e.Crop == crop {
			return e.Score
		}
	}
	return 0
}

const reportRule = "**=====================================================**"

func (r *Reporter) render(rep Report) string {
	p := r.printer
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	line(reportRule)
	line("** تقرير الخطة الزراعية والمالية التفصيلي للموسم**")
	line(reportRule)
	line("")
	line("**الموقع:** %s", rep.Location)
	line("**تاريخ التقرير:** %s", rep.GeneratedAt.Format("2006-01-02 15:04:05"))
	line("**نوع التربة المُحدد:** %s", rep.SoilLabel)
	line("")
	line("## I. التوصية الرئيسية والملاءمة")
	line("**المحصول المقترح:** %s", rep.Crop)
	line("**مستوى الملاءمة:** %s%%", fmt.Sprintf("%.1f", rep.Score))
	line("")
	line("## II. الخطة المالية المتوقعة (لـ %s هكتار)", fmt.Sprintf("%.2f", rep.AreaHa))
	line("| البند | التقدير (د.ج) |")
	line("| :--- | :--- |")
	line("| **الإيرادات الكلية** | %d |", whole(rep.TotalRevenue))
	line("| **إجمالي التكاليف** | **%d** |", whole(rep.TotalCost))
	line("| **الربح الصافي المتوقع** | **%d** |", whole(rep.NetProfit))
	line("")
	line("## III. المؤشرات الزراعية")
	line("| المؤشر | القيمة | الوحدة |")
	line("| :--- | :--- | :--- |")
	line("| **المساحة الكلية** | %d | م² |", whole(rep.AreaSqm))
	line("| **المردود المتوقع** | %d | كغم |", whole(rep.ExpectedYieldKg))
	line("| **الاحتياج المائي الكلي** | %d | م³ |", whole(rep.TotalWaterM3))
	line("")
	b.WriteString(reportRule)

	return b.String()
}

// whole rounds to an integer so the printer applies digit grouping.
func whole(v float64) int64 { return int64(math.Round(v)) }
