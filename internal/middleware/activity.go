package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/logger"
	"github.com/guttosm/compliance-track/internal/metrics"
	"github.com/guttosm/compliance-track/internal/service"
)

const recorderKey = "activity_recorder"

// RecorderConfig sizes the activity queue. Each worker writes up to BatchSize queued
// entries per round trip.
type RecorderConfig struct {
	QueueSize    int
	Workers      int
	BatchSize    int
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the production queue settings.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{QueueSize: 1000, Workers: 4, BatchSize: 50, WriteTimeout: 5 * time.Second}
}

// RecorderStats counts entries by outcome.
type RecorderStats struct {
	Queued  int64 `json:"queued"`
	Dropped int64 `json:"dropped"`
	Written int64 `json:"written"`
	Failed  int64 `json:"failed"`
}

// ActivityRecorder writes log entries through a bounded queue drained by a fixed set of
// workers. When the queue is full entries are dropped rather than blocking the request.
type ActivityRecorder struct {
	sink    service.ActivityLog
	batch   int
	timeout time.Duration
	queue   chan *model.LogEntry
	workers sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	queued, dropped, written, failed atomic.Int64
}

// NewActivityRecorder starts the workers. A nil sink yields a nil recorder, which records nothing.
func NewActivityRecorder(sink service.ActivityLog, cfg RecorderConfig) *ActivityRecorder {
	if sink == nil {
		return nil
	}
	r := &ActivityRecorder{
		sink:    sink,
		batch:   max(cfg.BatchSize, 1),
		timeout: cfg.WriteTimeout,
		queue:   make(chan *model.LogEntry, max(cfg.QueueSize, 1)),
	}
	for range max(cfg.Workers, 1) {
		r.workers.Add(1)
		go r.drain()
	}
	return r
}

// Record queues the entry. It reports false when the entry was dropped.
func (r *ActivityRecorder) Record(entry *model.LogEntry) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop()
		return false
	}
	select {
	case r.queue <- entry:
		r.queued.Add(1)
		metrics.RecordActivity("queued", 1)
		return true
	default:
		r.drop()
		return false
	}
}

// Close stops accepting entries and waits until the queued ones are written.
func (r *ActivityRecorder) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.workers.Wait()
}

func (r *ActivityRecorder) drop() {
	r.dropped.Add(1)
	metrics.RecordActivity("dropped", 1)
}

// Stats returns the counters.
func (r *ActivityRecorder) Stats() RecorderStats {
	if r == nil {
		return RecorderStats{}
	}
	return RecorderStats{
		Queued:  r.queued.Load(),
		Dropped: r.dropped.Load(),
		Written: r.written.Load(),
		Failed:  r.failed.Load(),
	}
}

func (r *ActivityRecorder) drain() {
	defer r.workers.Done()
	batch := make([]*model.LogEntry, 0, r.batch)
	for entry := range r.queue {
		batch = append(batch[:0], entry)
	fill:
		for len(batch) < r.batch {
			select {
			case next, ok := <-r.queue:
				if !ok {
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}
		r.write(batch)
	}
}

func (r *ActivityRecorder) write(batch []*model.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	n := int64(len(batch))
	if err := r.sink.Record(ctx, batch...); err != nil {
		r.failed.Add(n)
		metrics.RecordActivity("failed", len(batch))
		log := logger.Logger()
		log.Warn().Err(err).Int64("entries", n).Msg("activity entries not stored")
		return
	}
	r.written.Add(n)
	metrics.RecordActivity("written", len(batch))
}

// WithRecorder makes the recorder available to Audit and RequestLogger.
func WithRecorder(r *ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(recorderKey, r)
		c.Next()
	}
}

func recorderFrom(c *gin.Context) *ActivityRecorder {
	r, _ := c.Value(recorderKey).(*ActivityRecorder)
	return r
}

// Audit records a user action such as a login, a calculation or a catalog change.
func Audit(c *gin.Context, action, message string, fields map[string]any) {
	recorderFrom(c).Record(activityEntry(c, model.LevelInfo, action, message, fields))
}

// AuditFailure records a failed user action with its error.
func AuditFailure(c *gin.Context, action, message string, err error, fields map[string]any) {
	entry := activityEntry(c, model.LevelError, action, message, fields)
	if err != nil {
		entry.Error = err.Error()
	}
	recorderFrom(c).Record(entry)
}

func activityEntry(c *gin.Context, level, action, message string, fields map[string]any) *model.LogEntry {
	entry := &model.LogEntry{
		Timestamp:  time.Now().UTC(),
		Level:      level,
		Message:    message,
		RequestID:  GetRequestID(c),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		ActionType: action,
		Fields:     fields,
	}
	if identity, ok := IdentityFromContext(c); ok {
		entry.UserID, entry.UserEmail = identity.UserID, identity.Email
	}
	return entry
}
