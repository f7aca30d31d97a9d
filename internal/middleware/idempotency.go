package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/i18n"
	"github.com/guttosm/compliance-track/internal/service/cache"
)

// Idempotency headers.
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
)

// replayedHeaders are copied from a stored response onto its replay.
var replayedHeaders = []string{"Content-Type", "Content-Disposition", "Location"}

type storedResponse struct {
	status int
	header http.Header
	body   []byte
	// digest of the request body the response answered
	digest [sha256.Size]byte
}

// IdempotencyStore keeps successful responses for replay.
type IdempotencyStore struct {
	responses *cache.Store[storedResponse]
}

// NewIdempotencyStore keeps up to capacity responses for ttl.
func NewIdempotencyStore(capacity int, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{responses: cache.New[storedResponse](cache.Options{Name: "idempotency", Capacity: capacity, TTL: ttl, Shards: 8})}
}

// Stop releases the store.
func (s *IdempotencyStore) Stop() {
	s.responses.Stop()
}

// Idempotency replays the stored 2xx response when a POST, PUT or PATCH repeats an
// Idempotency-Key. Keys are scoped to the caller's credentials, method and path. Reusing a key with a
// different body is a conflict.
func Idempotency(store *IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			abort(c, http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		digest := sha256.Sum256(body)
		slot := idempotencySlot(c, key)

		if prior, ok := store.responses.Get(slot); ok {
			if prior.digest != digest {
				abort(c, http.StatusConflict, i18n.ErrKeyIdempotencyConflict)
				return
			}
			for _, h := range replayedHeaders {
				if v := prior.header.Get(h); v != "" {
					c.Header(h, v)
				}
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(prior.status, prior.header.Get("Content-Type"), prior.body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if status := recorder.Status(); status >= 200 && status < 300 {
			store.responses.Set(slot, storedResponse{
				status: status,
				header: recorder.Header().Clone(),
				body:   recorder.buf.Bytes(),
				digest: digest,
			})
		}
	}
}

func mutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// idempotencySlot names the cache entry of a key for this caller and route.
func idempotencySlot(c *gin.Context, key string) string {
	caller := "ip:" + c.ClientIP()
	if auth := c.GetHeader("Authorization"); auth != "" {
		caller = "auth:" + auth
	} else if apiKey := c.GetHeader(APIKeyHeader); apiKey != "" {
		caller = "key:" + apiKey
	}
	sum := sha256.Sum256([]byte(caller + "\x00" + c.Request.Method + "\x00" + c.Request.URL.Path + "\x00" + key))
	return hex.EncodeToString(sum[:])
}

// bodyRecorder copies the response body while writing it through.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
