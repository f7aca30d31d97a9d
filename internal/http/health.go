package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/circuitbreaker"
	"github.com/guttosm/compliance-track/internal/middleware"
)

// HealthCheck reports whether a dependency answers.
type HealthCheck func(ctx context.Context) error

// HealthHandler serves /healthz and /readyz. The API stays usable without MongoDB, so
// only an open breaker or a failing check makes the service unready.
type HealthHandler struct {
	timeout  time.Duration
	checks   map[string]HealthCheck
	breakers map[string]*circuitbreaker.CircuitBreaker
	activity *middleware.ActivityRecorder
}

// NewHealthHandler creates a handler that gives all checks two seconds together.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		timeout:  2 * time.Second,
		checks:   map[string]HealthCheck{},
		breakers: map[string]*circuitbreaker.CircuitBreaker{},
	}
}

// AddCheck runs check on every readiness request.
func (h *HealthHandler) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// AddBreaker reports the breaker state. An open breaker fails readiness.
func (h *HealthHandler) AddBreaker(name string, cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		h.breakers[name] = cb
	}
}

// WatchActivity adds the activity queue counters to the readiness report.
func (h *HealthHandler) WatchActivity(r *middleware.ActivityRecorder) {
	h.activity = r
}

// Register mounts the endpoints.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles GET /healthz.
//
// @Summary     Liveness
// @Description Answers while the process serves requests. Prometheus metrics are at /metrics.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz.
//
// @Summary     Readiness
// @Description Runs the dependency checks and reports the MongoDB circuit breakers.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]any "Ready"
// @Failure     503 {object} map[string]any "A check failed or a breaker is open"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		ready  = true
		checks = make(map[string]string, len(h.checks)+len(h.breakers))
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := "ok"
			if err := check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			checks[name] = result
			ready = ready && result == "ok"
		}()
	}
	wg.Wait()

	breakers := make(map[string]string, len(h.breakers))
	for name, cb := range h.breakers {
		breakers[name] = cb.State().String()
		if cb.IsOpen() {
			ready = false
		}
	}

	body := gin.H{"status": "ok", "checks": checks, "circuits": breakers}
	if h.activity != nil {
		body["activity"] = h.activity.Stats()
	}
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
