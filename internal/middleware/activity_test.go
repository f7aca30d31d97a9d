package middleware

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

func TestNewActivityRecorder_NilSink(t *testing.T) {
	r := NewActivityRecorder(nil, DefaultRecorderConfig())
	require.Nil(t, r)

	assert.False(t, r.Record(&model.LogEntry{Message: "request"}))
	assert.NotPanics(t, r.Close)
	assert.Equal(t, RecorderStats{}, r.Stats())
}

func TestActivityRecorder_WritesEverythingBeforeClose(t *testing.T) {
	sink := &collector{}
	r := NewActivityRecorder(sink, RecorderConfig{QueueSize: 100, Workers: 3, BatchSize: 8, WriteTimeout: time.Second})

	for i := 0; i < 40; i++ {
		require.True(t, r.Record(&model.LogEntry{ActionType: model.ActionCalculate}))
	}
	r.Close()

	assert.Len(t, sink.recorded(), 40)
	for _, n := range sink.batches {
		assert.LessOrEqual(t, n, 8)
	}
	assert.Equal(t, RecorderStats{Queued: 40, Written: 40}, r.Stats())
}

func TestActivityRecorder_DropsWhenFull(t *testing.T) {
	sink := &collector{gate: make(chan struct{})}
	r := NewActivityRecorder(sink, RecorderConfig{QueueSize: 2, Workers: 1, BatchSize: 1, WriteTimeout: time.Second})

	// the worker takes the first entry and blocks on the gate, two more fill the queue
	require.True(t, r.Record(&model.LogEntry{Message: "1"}))
	require.Eventually(t, func() bool { return len(r.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, r.Record(&model.LogEntry{Message: "2"}))
	require.True(t, r.Record(&model.LogEntry{Message: "3"}))

	assert.False(t, r.Record(&model.LogEntry{Message: "4"}))

	close(sink.gate)
	r.Close()
	assert.False(t, r.Record(&model.LogEntry{Message: "late"}))

	stats := r.Stats()
	assert.Equal(t, int64(3), stats.Queued)
	assert.Equal(t, int64(2), stats.Dropped)
	assert.Equal(t, int64(3), stats.Written)
}

func TestActivityRecorder_CountsFailedWrites(t *testing.T) {
	sink := &collector{fail: true}
	r := NewActivityRecorder(sink, RecorderConfig{QueueSize: 10, Workers: 1, BatchSize: 10, WriteTimeout: time.Second})

	r.Record(&model.LogEntry{Message: "a"})
	r.Record(&model.LogEntry{Message: "b"})
	r.Close()

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.Failed)
	assert.Zero(t, stats.Written)
}

func TestAudit_RecordsCallerAndRequest(t *testing.T) {
	sink := &collector{}
	rec := NewActivityRecorder(sink, DefaultRecorderConfig())

	r := gin.New()
	r.Use(RequestID(), WithRecorder(rec), func(c *gin.Context) { SetIdentity(c, chemist); c.Next() })
	r.POST("/api/v1/sessions/:id/calculate", func(c *gin.Context) {
		Audit(c, model.ActionCalculate, "session calculated", map[string]any{"session_id": c.Param("id")})
		c.Status(http.StatusOK)
	})
	r.DELETE("/api/v1/admin/chemicals/:id", func(c *gin.Context) {
		AuditFailure(c, model.ActionDeleteChemical, "chemical delete failed", errors.New("chemical not found"), nil)
		c.Status(http.StatusNotFound)
	})

	serve(r, http.MethodPost, "/api/v1/sessions/s-9/calculate", "", map[string]string{RequestIDHeader: "req-1", "User-Agent": "lab-client/1.0"})
	serve(r, http.MethodDelete, "/api/v1/admin/chemicals/c-1", "", map[string]string{RequestIDHeader: "req-2"})
	rec.Close()

	got := map[string]*model.LogEntry{}
	for _, e := range sink.recorded() {
		got[e.RequestID] = e
	}
	require.Len(t, got, 2)

	calc := got["req-1"]
	assert.Equal(t, model.LevelInfo, calc.Level)
	assert.Equal(t, model.ActionCalculate, calc.ActionType)
	assert.Equal(t, http.MethodPost, calc.Method)
	assert.Equal(t, "/api/v1/sessions/s-9/calculate", calc.Path)
	assert.Equal(t, "lab-client/1.0", calc.UserAgent)
	assert.Equal(t, chemist.UserID, calc.UserID)
	assert.Equal(t, chemist.Email, calc.UserEmail)
	assert.Equal(t, "s-9", calc.Fields["session_id"])

	failed := got["req-2"]
	assert.Equal(t, model.LevelError, failed.Level)
	assert.Equal(t, "chemical not found", failed.Error)
	assert.True(t, failed.IsAudit())
}

func TestAudit_WithoutRecorder(t *testing.T) {
	r := newAPI()
	r.POST("/api/v1/sessions/:id/calculate", func(c *gin.Context) {
		Audit(c, model.ActionCalculate, "session calculated", nil)
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/sessions/s-1/calculate", "", nil).Code)
}
