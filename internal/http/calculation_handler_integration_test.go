//go:build integration

package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/internal/circuitbreaker"
	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/service"
	"github.com/guttosm/compliance-track/internal/testutil"
)

func postCalculation(router *gin.Engine, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIntegration_Calculations_AllScenarios(t *testing.T) {
	router := NewRouter(NewHealthHandler(), RouterConfig{})

	testCases := []struct {
		name           string
		request        dto.CalculateRequest
		expectedM      float64
		expectedResult model.Verdict
	}{
		{
			name: "default geometry fails a tight limit",
			request: dto.CalculateRequest{
				Parameters: model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: 1, FoodWeight: 1000},
				Substances: []dto.SubstanceInput{{Name: "Bisphenol A", Contamination: 1, ReferenceLimits: map[model.RegulationID]float64{"eu-10-2011": 0.05}}},
			},
			expectedM:      0.06,
			expectedResult: model.VerdictFail,
		},
		{
			name: "small contact area passes",
			request: dto.CalculateRequest{
				Parameters: model.PackagingParameters{ContactSurfaceArea: 250, Thickness: 0.035, Density: 0.94, FoodWeight: 330},
				Substances: []dto.SubstanceInput{{Name: "Titanium Dioxide", Contamination: 50, ReferenceLimits: map[model.RegulationID]float64{"eu-10-2011": 60}}},
			},
			expectedM:      50 * 250 * 0.035 * 0.94 / 330,
			expectedResult: model.VerdictPass,
		},
		{
			name: "unknown case ignores submitted geometry",
			request: dto.CalculateRequest{
				Case:       model.CaseUnknownContactAndWeight,
				Parameters: model.PackagingParameters{ContactSurfaceArea: 1, Thickness: 0.1, Density: 1, FoodWeight: 1},
				Substances: []dto.SubstanceInput{{Name: "Formaldehyde", Contamination: 100, ReferenceLimits: map[model.RegulationID]float64{"eu-10-2011": 15}}},
			},
			expectedM:      6,
			expectedResult: model.VerdictPass,
		},
		{
			name: "limit of zero is enforced",
			request: dto.CalculateRequest{
				Parameters: model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: 1, FoodWeight: 1000},
				Substances: []dto.SubstanceInput{{Name: "PFOA", Contamination: 0.001, ReferenceLimits: map[model.RegulationID]float64{"eu-10-2011": 0}}},
			},
			expectedM:      0.00006,
			expectedResult: model.VerdictFail,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/calculations", tc.request)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp dto.CalculationResponse
			decodeData(t, w, &resp)
			require.Len(t, resp.Results, 1)
			assert.InDelta(t, tc.expectedM, resp.Results[0].MigrationValue, 1e-9)
			assert.Equal(t, tc.expectedResult, resp.Results[0].Verdict("eu-10-2011"))
		})
	}
}

func TestIntegration_RateLimiting(t *testing.T) {
	limiter := middleware.NewLimiter(5, time.Second)
	t.Cleanup(limiter.Stop)
	router := NewRouter(NewHealthHandler(), RouterConfig{Limiter: limiter})
	body := []byte(contractBody)

	for i := 0; i < 5; i++ {
		w := postCalculation(router, "/api/v1/calculations", body, nil)
		assert.Equal(t, http.StatusOK, w.Code, "Request %d", i+1)
	}

	w := postCalculation(router, "/api/v1/calculations", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestIntegration_APIKeyAuth(t *testing.T) {
	router := NewRouter(NewHealthHandler(), RouterConfig{
		EnableAuth: true,
		APIKeys:    map[string]bool{"valid-key": true},
	})
	body := []byte(contractBody)

	tests := []struct {
		name           string
		path           string
		headers        map[string]string
		expectedStatus int
	}{
		{"missing API key", "/api/v1/calculations", nil, http.StatusUnauthorized},
		{"invalid API key", "/api/v1/calculations", map[string]string{"X-API-Key": "invalid-key"}, http.StatusUnauthorized},
		{"valid API key in header", "/api/v1/calculations", map[string]string{"X-API-Key": "valid-key"}, http.StatusOK},
		{"valid API key in query param", "/api/v1/calculations?api_key=valid-key", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postCalculation(router, tt.path, body, tt.headers)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	t.Run("health endpoints bypass auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestIntegration_CalculationAudit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := repository.NewMongoDB(testutil.MongoURI(), testutil.DatabaseName(t.Name()))
	require.NoError(t, err)
	defer func() {
		_ = db.Close(ctx)
	}()

	logsRepo := repository.NewLogsRepository(db)
	logs := repository.NewLogsRepositoryWithCircuitBreaker(logsRepo, circuitbreaker.New(circuitbreaker.DefaultConfig()))
	recorder := middleware.NewActivityRecorder(service.NewActivityLog(logs), middleware.DefaultRecorderConfig())
	router := NewRouter(NewHealthHandler(), RouterConfig{Activity: recorder})

	w := postCalculation(router, "/api/v1/calculations", []byte(contractBody), map[string]string{"X-Request-ID": "calc-audit"})
	require.Equal(t, http.StatusOK, w.Code)
	recorder.Close()

	entries, err := logsRepo.Find(ctx, model.LogQueryOptions{RequestID: "calc-audit"})
	require.NoError(t, err)
	require.Len(t, entries, 2, "one audit entry and one request entry")

	audited, err := logsRepo.Count(ctx, model.LogQueryOptions{
		Path:        "/api/v1/calculations",
		ActionTypes: []string{model.ActionCalculate},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), audited)
	assert.Equal(t, int64(2), recorder.Stats().Written)
}

const contractBody = `{
	"parameters": {"contact_surface_area": 600, "thickness": 0.1, "density": 1, "food_weight": 1000},
	"substances": [{"name": "Bisphenol A", "contamination": 1, "reference_limits": {"eu-10-2011": 0.05}}]
}`
