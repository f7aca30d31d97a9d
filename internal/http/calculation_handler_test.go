package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/internal/domain/dto"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/mocks"
)

// doJSON sends body (marshaled unless it is a string) to the router.
func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	return doJSONWith(router, method, path, body, nil)
}

// doJSONWith is doJSON with extra request headers.
func doJSONWith(router *gin.Engine, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func standardParameters() model.PackagingParameters {
	return model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: 1, FoodWeight: 1000}
}

func TestCalculationHandler_Calculate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		validate       func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "classifies against every referenced regulation",
			body: dto.CalculateRequest{
				Parameters: standardParameters(),
				Substances: []dto.SubstanceInput{
					{Name: "Bisphenol A", CASNumber: "80-05-7", Contamination: 1, ReferenceLimits: map[model.RegulationID]float64{"eu-10-2011": 0.05}},
					{Name: "Styrene", Contamination: 1, ReferenceLimits: map[model.RegulationID]float64{"fda-21-cfr": 0.6}},
				},
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.CalculationResponse
				decodeData(t, w, &resp)

				assert.Equal(t, model.CaseKnownContactAndWeight, resp.Case)
				require.Len(t, resp.Columns, 2)
				assert.Equal(t, model.RegulationID("eu-10-2011"), resp.Columns[0].ID)
				assert.Equal(t, model.RegulationID("fda-21-cfr"), resp.Columns[1].ID)

				require.Len(t, resp.Results, 2)
				assert.InDelta(t, 0.06, resp.Results[0].MigrationValue, 1e-12)
				assert.Equal(t, model.VerdictFail, resp.Results[0].Verdict("eu-10-2011"))
				assert.Equal(t, model.VerdictUnknown, resp.Results[0].Verdict("fda-21-cfr"))
				assert.Equal(t, model.VerdictPass, resp.Results[1].Verdict("fda-21-cfr"))
			},
		},
		{
			name: "unknown case locks the geometry",
			body: dto.CalculateRequest{
				Case:       model.CaseUnknownContactAndWeight,
				Parameters: model.PackagingParameters{ContactSurfaceArea: 10, Thickness: 0.1, Density: 1, FoodWeight: 10},
				Substances: []dto.SubstanceInput{{Name: "Styrene", Contamination: 2}},
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.CalculationResponse
				decodeData(t, w, &resp)

				assert.Equal(t, 600.0, resp.Parameters.ContactSurfaceArea)
				assert.Equal(t, 1000.0, resp.Parameters.FoodWeight)
				require.Len(t, resp.Results, 1)
				assert.InDelta(t, 0.12, resp.Results[0].MigrationValue, 1e-12)
				assert.Empty(t, resp.Results[0].Verdicts)
			},
		},
		{
			name: "explicit regulations without a limit yield unknown",
			body: dto.CalculateRequest{
				Parameters:  standardParameters(),
				Substances:  []dto.SubstanceInput{{Name: "Styrene", Contamination: 1}},
				Regulations: []model.RegulationID{"mercosur-56-92"},
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.CalculationResponse
				decodeData(t, w, &resp)
				require.Len(t, resp.Results, 1)
				assert.Equal(t, model.VerdictUnknown, resp.Results[0].Verdict("mercosur-56-92"))
			},
		},
		{
			name: "zero food weight is rejected",
			body: dto.CalculateRequest{
				Parameters: model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: 1},
				Substances: []dto.SubstanceInput{{Name: "Styrene", Contamination: 1}},
			},
			expectedStatus: http.StatusUnprocessableEntity,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.ErrCodeUnprocessable, decodeError(t, w).Error)
			},
		},
		{
			name: "nothing to calculate without a named substance",
			body: dto.CalculateRequest{
				Parameters: standardParameters(),
				Substances: []dto.SubstanceInput{{Name: "  ", Contamination: 1}},
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "invalid regulation id fails validation",
			body: dto.CalculateRequest{
				Parameters:  standardParameters(),
				Substances:  []dto.SubstanceInput{{Name: "Styrene", Contamination: 1}},
				Regulations: []model.RegulationID{"Not An Id"},
			},
			expectedStatus: http.StatusBadRequest,
			validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.NotEmpty(t, decodeError(t, w).Details)
			},
		},
		{
			name:           "malformed body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			h := NewCalculationHandler(nil, nil)
			router.POST("/calculations", h.Calculate)

			w := doJSON(router, http.MethodPost, "/calculations", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.validate != nil {
				tt.validate(t, w)
			}
		})
	}
}

func TestCalculationHandler_Calculate_NamesColumns(t *testing.T) {
	gin.SetMode(gin.TestMode)

	regulations := mocks.NewMockRegulationService(t)
	regulations.On("Columns", mock.Anything, []model.RegulationID{"eu-10-2011"}).
		Return([]model.RegulationColumn{{ID: "eu-10-2011", Name: "Regulation (EU) 10/2011"}}, nil)

	router := gin.New()
	router.POST("/calculations", NewCalculationHandler(nil, regulations).Calculate)

	w := doJSON(router, http.MethodPost, "/calculations", dto.CalculateRequest{
		Parameters: standardParameters(),
		Substances: []dto.SubstanceInput{
			{Name: "Bisphenol A", Contamination: 1, ReferenceLimits: map[model.RegulationID]float64{"eu-10-2011": 0.05}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.CalculationResponse
	decodeData(t, w, &resp)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Regulation (EU) 10/2011", resp.Columns[0].Name)
	assert.Equal(t, "Regulation (EU) 10/2011", resp.Results[0].Verdicts[0].RegulationName)
}

func TestCalculationHandler_Readiness(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		body  dto.CalculateRequest
		ready bool
	}{
		{
			name: "ready",
			body: dto.CalculateRequest{
				Parameters: standardParameters(),
				Substances: []dto.SubstanceInput{{Name: "Styrene", Contamination: 1}},
			},
			ready: true,
		},
		{
			name: "zero thickness",
			body: dto.CalculateRequest{
				Parameters: model.PackagingParameters{ContactSurfaceArea: 600, Density: 1, FoodWeight: 1000},
				Substances: []dto.SubstanceInput{{Name: "Styrene", Contamination: 1}},
			},
		},
		{
			name: "no contamination",
			body: dto.CalculateRequest{
				Parameters: standardParameters(),
				Substances: []dto.SubstanceInput{{Name: "Styrene"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/readiness", NewCalculationHandler(nil, nil).Readiness)

			w := doJSON(router, http.MethodPost, "/readiness", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			var resp dto.ReadinessResponse
			decodeData(t, w, &resp)
			assert.Equal(t, tt.ready, resp.Ready)
		})
	}
}
