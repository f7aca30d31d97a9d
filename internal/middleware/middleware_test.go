package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/i18n"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	i18n.Default()
	m.Run()
}

// newAPI returns an engine with the request id middleware and the given chain in front
// of a calculation route, a session route and an admin route.
func newAPI(chain ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api/v1", chain...)
	api.POST("/calculations", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"total_migration": 0.42})
	})
	api.POST("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": "s-1"})
	})
	api.GET("/sessions/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	api.DELETE("/admin/chemicals/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// collector is an ActivityLog that keeps what it is given.
type collector struct {
	mu      sync.Mutex
	entries []*model.LogEntry
	batches []int
	fail    bool
	// gate, when set, holds every Record call until it is closed.
	gate chan struct{}
}

func (s *collector) Record(_ context.Context, entries ...*model.LogEntry) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("logs collection unavailable")
	}
	s.entries = append(s.entries, entries...)
	s.batches = append(s.batches, len(entries))
	return nil
}

func (s *collector) Query(context.Context, model.LogQueryOptions) ([]model.LogEntry, error) {
	return nil, nil
}

func (s *collector) Count(context.Context, model.LogQueryOptions) (int64, error) {
	return 0, nil
}

func (s *collector) recorded() []*model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.LogEntry(nil), s.entries...)
}
