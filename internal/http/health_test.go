package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/internal/circuitbreaker"
	"github.com/guttosm/compliance-track/internal/middleware"
	"github.com/guttosm/compliance-track/internal/mocks"
)

type readiness struct {
	Status   string                    `json:"status"`
	Checks   map[string]string         `json:"checks"`
	Circuits map[string]string         `json:"circuits"`
	Activity *middleware.RecorderStats `json:"activity"`
}

func readyz(t *testing.T, h *HealthHandler) (int, readiness) {
	t.Helper()
	router := gin.New()
	h.Register(router)
	w := doJSON(router, http.MethodGet, "/readyz", nil)
	var got readiness
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return w.Code, got
}

func openBreaker(t *testing.T) *circuitbreaker.CircuitBreaker {
	t.Helper()
	cb := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Hour, Name: "mongodb_chemicals"})
	_ = cb.Execute(context.Background(), func() error { return errors.New("server selection timeout") })
	require.True(t, cb.IsOpen())
	return cb
}

func TestHealthHandler_Liveness(t *testing.T) {
	router := gin.New()
	NewHealthHandler().Register(router)
	w := doJSON(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*HealthHandler)
		wantStatus int
		check      func(*testing.T, readiness)
	}{
		{
			name:       "memory only",
			setup:      func(*HealthHandler) {},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, r readiness) {
				assert.Equal(t, "ok", r.Status)
				assert.Empty(t, r.Checks)
				assert.Nil(t, r.Activity)
			},
		},
		{
			name: "mongodb answers",
			setup: func(h *HealthHandler) {
				h.AddCheck("mongodb", func(context.Context) error { return nil })
				h.AddBreaker("mongodb_chemicals", circuitbreaker.New(circuitbreaker.DefaultConfig()))
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, r readiness) {
				assert.Equal(t, "ok", r.Checks["mongodb"])
				assert.Equal(t, "closed", r.Circuits["mongodb_chemicals"])
			},
		},
		{
			name: "mongodb ping fails",
			setup: func(h *HealthHandler) {
				h.AddCheck("mongodb", func(context.Context) error { return errors.New("connection refused") })
				h.AddCheck("seed", func(context.Context) error { return nil })
			},
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, r readiness) {
				assert.Equal(t, "degraded", r.Status)
				assert.Equal(t, "connection refused", r.Checks["mongodb"])
				assert.Equal(t, "ok", r.Checks["seed"])
			},
		},
		{
			name: "breaker open",
			setup: func(h *HealthHandler) {
				h.AddBreaker("mongodb_chemicals", openBreaker(t))
				h.AddBreaker("mongodb_logs", nil)
			},
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, r readiness) {
				assert.Equal(t, "open", r.Circuits["mongodb_chemicals"])
				assert.NotContains(t, r.Circuits, "mongodb_logs")
			},
		},
		{
			name: "check respects the deadline",
			setup: func(h *HealthHandler) {
				h.timeout = 10 * time.Millisecond
				h.AddCheck("mongodb", func(ctx context.Context) error {
					<-ctx.Done()
					return ctx.Err()
				})
			},
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, r readiness) {
				assert.Equal(t, context.DeadlineExceeded.Error(), r.Checks["mongodb"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler()
			tt.setup(h)

			status, got := readyz(t, h)

			assert.Equal(t, tt.wantStatus, status)
			tt.check(t, got)
		})
	}
}

func TestHealthHandler_ReportsActivityQueue(t *testing.T) {
	sink := mocks.NewMockActivityLog(t)
	recorder := middleware.NewActivityRecorder(sink, middleware.DefaultRecorderConfig())
	recorder.Close()
	recorder.Record(nil)

	h := NewHealthHandler()
	h.WatchActivity(recorder)
	status, got := readyz(t, h)

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, got.Activity)
	assert.Equal(t, int64(1), got.Activity.Dropped)
}
