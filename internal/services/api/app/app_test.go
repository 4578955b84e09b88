package app

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor/session"
)

const wheat = "قمح_صلب"

func newTestApp(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	svc := advisor.NewService(advisor.Config{RandomSource: rand.NewSource(1)}, nil, session.NewStore(time.Hour))
	if cfg.UploadDir == "" {
		cfg.UploadDir = t.TempDir()
	}
	return New(cfg, svc).Routes()
}

func postJSON(t *testing.T, h http.Handler, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// validate checks a response body against testdata/<name>.schema.json.
func validate(t *testing.T, name string, body []byte) {
	t.Helper()
	sch, err := jsonschema.Compile(filepath.Join("testdata", name+".schema.json"))
	require.NoError(t, err)
	var v any
	require.NoError(t, json.Unmarshal(body, &v))
	require.NoError(t, sch.Validate(v))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeSoilJSON(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postJSON(t, h, "/api/analyze_soil", map[string]any{
		"image_path": "/data/samples/black_01.jpg",
		"area_sqm":   10000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	validate(t, "analyze_soil", rec.Body.Bytes())

	res := decode[advisor.SoilResult](t, rec)
	assert.Equal(t, "Black_Soil", string(res.SoilType))
	assert.Equal(t, wheat, res.Recommendations[0].Crop)
	assert.Equal(t, 61.5, res.Recommendations[0].Score)
}

func TestAnalyzeSoilFormDefaults(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postForm(t, h, "/api/analyze_soil", url.Values{"desired_crop": {wheat}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	validate(t, "analyze_soil", rec.Body.Bytes())
}

func TestAnalyzeSoilMultipartUpload(t *testing.T) {
	// the storage directory name must not influence classification
	dir := filepath.Join(t.TempDir(), "red")
	h := newTestApp(t, Config{UploadDir: dir})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "../Yellow field.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("not really a png"))
	require.NoError(t, mw.WriteField("area_sqm", "5000"))
	require.NoError(t, mw.WriteField("farmer_pref", "استهلاك ماء منخفض"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze_soil", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[advisor.SoilResult](t, rec)
	assert.Equal(t, "Yellow_Soil", string(res.SoilType))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_Yellow_field.png"), entries[0].Name())
}

func TestAnalyzeSoilMalformedNumber(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postForm(t, h, "/api/analyze_soil", url.Values{"area_sqm": {"lots"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	validate(t, "error", rec.Body.Bytes())
}

func TestGeneratePlan(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postJSON(t, h, "/api/generate_plan", map[string]any{
		"selected_crop":   wheat,
		"area_sqm":        "10000",
		"soil_type":       "Black_Soil",
		"recommendations": []map[string]any{{"crop": wheat, "score": 61.5}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	validate(t, "generate_plan", rec.Body.Bytes())

	res := decode[planResponse](t, rec)
	assert.Equal(t, 300000.0, res.Plan.TotalCost)
	assert.Equal(t, 61.5, res.Plan.Score)
	assert.Equal(t, DefaultLocation, res.Plan.Location)
	assert.Contains(t, res.Report, "**300,000**")
	assert.Contains(t, res.Report, "61.5%")
}

func TestGeneratePlanUnknownCrop(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postForm(t, h, "/api/generate_plan", url.Values{"selected_crop": {"موز"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	validate(t, "error", rec.Body.Bytes())

	rec = postForm(t, h, "/api/generate_plan", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlanBadRecommendations(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postForm(t, h, "/api/generate_plan", url.Values{
		"selected_crop":   {wheat},
		"recommendations": {"{not a list"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHistorical(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postJSON(t, h, "/api/analyze_historical", map[string]any{
		"actual_yield": 2000, "area_sqm": 10000, "actual_water": 1000, "crop": "X",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	validate(t, "analyze_historical", rec.Body.Bytes())

	res := decode[historicalResponse](t, rec)
	assert.InDelta(t, 2.0, res.Analysis.WaterEfficiencyRatio, 1e-9)
	assert.Equal(t, "X", res.Analysis.PreviousCrop)
	assert.Equal(t, res.Analysis.Message, res.Message)
}

func TestAnalyzeHistoricalRejectsNonPositive(t *testing.T) {
	h := newTestApp(t, Config{})
	for _, body := range []map[string]any{
		{"actual_yield": 2000, "area_sqm": 10000, "actual_water": 0, "crop": "X"},
		{"actual_yield": 0, "area_sqm": 10000, "actual_water": 1000, "crop": "X"},
		{"actual_yield": 2000, "area_sqm": -5, "actual_water": 1000, "crop": "X"},
	} {
		rec := postJSON(t, h, "/api/analyze_historical", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		validate(t, "error", rec.Body.Bytes())
	}
}

func TestNonFiniteNumbersAreRejected(t *testing.T) {
	h := newTestApp(t, Config{})
	for _, v := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
		rec := postForm(t, h, "/api/analyze_historical", url.Values{
			"actual_yield": {v}, "area_sqm": {"10000"}, "actual_water": {"1000"}, "crop": {wheat},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
		validate(t, "error", rec.Body.Bytes())

		rec = postForm(t, h, "/api/generate_plan", url.Values{"selected_crop": {wheat}, "area_sqm": {v}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
		validate(t, "error", rec.Body.Bytes())
	}

	rec := postForm(t, h, "/api/analyze_soil", url.Values{"soil_type": {"Black_Soil"}, "farmer_pref": {"improve_efficiency"}})
	require.Equal(t, http.StatusOK, rec.Code)
	validate(t, "analyze_soil", rec.Body.Bytes())
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"score": math.NaN()})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	validate(t, "error", rec.Body.Bytes())
}

func TestHistoricalIsScopedToSession(t *testing.T) {
	h := newTestApp(t, Config{})
	rec := postJSON(t, h, "/api/analyze_historical", map[string]any{
		"actual_yield": 2000, "area_sqm": 10000, "actual_water": 1000, "crop": wheat,
	}, SessionHeader, "farm-a")
	require.Equal(t, http.StatusOK, rec.Code)

	score := func(sessionID string) float64 {
		rec := postJSON(t, h, "/api/analyze_soil", map[string]any{
			"soil_type":   "Black_Soil",
			"farmer_pref": "improve_efficiency",
			"session_id":  sessionID,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		for _, e := range decode[advisor.SoilResult](t, rec).Recommendations {
			if e.Crop == wheat {
				return e.Score
			}
		}
		t.Fatalf("wheat missing from ranking")
		return 0
	}
	assert.Equal(t, 66.7, score("farm-a"))
	assert.Equal(t, 61.5, score("farm-b"))
	assert.Equal(t, 61.5, score(""))
}

func TestMalformedJSONBody(t *testing.T) {
	h := newTestApp(t, Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze_historical", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	h := newTestApp(t, Config{MaxBodyBytes: 32})
	rec := postJSON(t, h, "/api/analyze_soil", map[string]any{
		"image_path": strings.Repeat("x", 256),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStaticRoutes(t *testing.T) {
	h := newTestApp(t, Config{})
	get := func(path string, hdr ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for i := 0; i+1 < len(hdr); i += 2 {
			req.Header.Set(hdr[i], hdr[i+1])
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = get("/healthz")
	assert.Equal(t, "ok", rec.Body.String())

	rec = get("/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, get("/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, get("/api/analyze_soil").Code)

	postForm(t, h, "/api/generate_plan", url.Values{"selected_crop": {wheat}})
	rec = get("/metrics")
	assert.Contains(t, rec.Body.String(), `advisor_http_requests_total{code="200",route="generate_plan"} 1`)

	rec = get("/metrics", "Accept-Encoding", "gzip")
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestPreflight(t *testing.T) {
	h := newTestApp(t, Config{})
	req := httptest.NewRequest(http.MethodOptions, "/api/generate_plan", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"black_soil.jpg":         "black_soil.jpg",
		"../../etc/passwd":       "passwd",
		`C:\photos\Red Soil.JPG`: "Red_Soil.JPG",
		".hidden":                "hidden",
		"تربة.png":               "png",
		"":                       "upload",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
