package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
)

func (a *App) handleAnalyzeSoil(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	hint := f.strOr("image_path", noImageHint)
	if f.multipart {
		name, err := a.saveUpload(r)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if name != "" {
			hint = name
		}
	}
	area, err := f.num("area_sqm", DefaultAreaSqm)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	res := a.svc.AnalyzeSoil(r.Context(), advisor.SoilRequest{
		SessionID:   f.sessionID(r),
		ImageHint:   hint,
		Soil:        model.SoilType(f.str("soil_type")),
		AreaSqm:     area,
		PrevCrops:   f.str("prev_crops_str"),
		Preference:  f.str("farmer_pref"),
		DesiredCrop: f.str("desired_crop"),
	})
	writeJSON(w, http.StatusOK, res)
}

func (a *App) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	area, err := f.num("area_sqm", DefaultAreaSqm)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	recs, err := f.recommendations("recommendations")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	rep, err := a.svc.GeneratePlan(r.Context(), advisor.PlanRequest{
		SessionID:       f.sessionID(r),
		Crop:            f.str("selected_crop"),
		AreaSqm:         area,
		Soil:            model.SoilType(f.strOr("soil_type", string(DefaultSoil))),
		Location:        f.strOr("location_name", DefaultLocation),
		Recommendations: recs,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Report: rep.Text, Plan: rep})
}

func (a *App) handleAnalyzeHistorical(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	req := advisor.HistoricalRequest{SessionID: f.sessionID(r), Crop: f.str("crop")}
	if req.ActualYield, err = f.num("actual_yield", 0); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.AreaSqm, err = f.num("area_sqm", DefaultAreaSqm); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.ActualWater, err = f.num("actual_water", 0); err != nil {
		a.fail(w, r, err)
		return
	}

	an, err := a.svc.AnalyzeHistorical(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historicalResponse{Message: an.Message, Analysis: an})
}

// fail maps err to a status: validation 400, oversized body 413, otherwise 500.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case isBodyTooLarge(err):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, advisor.ErrValidation):
		status = http.StatusBadRequest
	}
	if status >= 500 {
		a.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		a.logger.Info("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// writeJSON encodes before touching the header; encoding failures become a
// 500 JSON error.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
