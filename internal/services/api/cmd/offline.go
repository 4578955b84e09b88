package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/api/app"
)

// offlineService runs the pipeline without sinks or sessions.
func offlineService(weight float64) (*advisor.Service, error) {
	cfg := loadConfig()
	catalog, err := advisor.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if weight <= 0 {
		weight = cfg.EfficiencyWeight
	}
	return advisor.NewService(advisor.Config{EfficiencyWeight: weight}, catalog, nil), nil
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <image-path>",
		Short: "Print the soil type guessed for an image name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			soil := advisor.NewClassifier(nil).Classify(args[0])
			_, err := fmt.Fprintln(cmd.OutOrStdout(), soil)
			return err
		},
	}
}

func newScoreCmd() *cobra.Command {
	var (
		req    advisor.SoilRequest
		soil   string
		weight float64
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank the catalog crops for a soil",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := offlineService(weight)
			if err != nil {
				return err
			}
			req.Soil = model.SoilType(soil)
			res := svc.AnalyzeSoil(cmd.Context(), req)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "soil: %s\n", res.SoilType)
			for i, e := range res.Recommendations {
				fmt.Fprintf(out, "%d\t%s\t%.1f\n", i+1, e.Crop, e.Score)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&soil, "soil", "", "soil type, e.g. Black_Soil (classified from --image when empty)")
	f.StringVar(&req.ImageHint, "image", "", "image path used as classification hint")
	f.Float64Var(&req.AreaSqm, "area", app.DefaultAreaSqm, "plot area in m2")
	f.StringVar(&req.PrevCrops, "prev", "", "comma separated crops grown last seasons")
	f.StringVar(&req.Preference, "pref", "", "high_profit, low_water, improve_efficiency or none")
	f.StringVar(&req.DesiredCrop, "desired", "", "crop the farmer would like to grow")
	f.Float64Var(&weight, "efficiency-weight", 0, "override EFFICIENCY_WEIGHT")
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		req  advisor.PlanRequest
		soil string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the seasonal plan for one crop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := offlineService(0)
			if err != nil {
				return err
			}
			req.Soil = model.SoilType(soil)
			rep, err := svc.GeneratePlan(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rep.Text)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Crop, "crop", "", "catalog crop name")
	f.Float64Var(&req.AreaSqm, "area", app.DefaultAreaSqm, "plot area in m2")
	f.StringVar(&soil, "soil", string(app.DefaultSoil), "soil type")
	f.StringVar(&req.Location, "location", app.DefaultLocation, "location name")
	_ = cmd.MarkFlagRequired("crop")
	return cmd
}
