package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestIDKey struct{}

const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the gin context key for request ID
	RequestIDContextKey = "request_id"
	// IdempotentReplayHeader marks a response served from the idempotency store
	IdempotentReplayHeader = "X-Idempotent-Replay"
)

var ErrRequestIDNotFound = errors.New("request ID not found")

// RequestIDStore stores responses of processed write requests
type RequestIDStore interface {
	Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error
	Get(ctx context.Context, key string) (StoredResponse, error)
}

// StoredResponse is a replayable response
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// CacheRequestIDStore keeps responses in the shared cache, so replays
// survive across instances when Redis is enabled.
type CacheRequestIDStore struct {
	cache cache.Cache
}

func NewCacheRequestIDStore(c cache.Cache) *CacheRequestIDStore {
	return &CacheRequestIDStore{cache: c}
}

func (s *CacheRequestIDStore) Store(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error {
	return cache.SetJSON(ctx, s.cache, "idempotency:"+key, response, ttl)
}

func (s *CacheRequestIDStore) Get(ctx context.Context, key string) (StoredResponse, error) {
	var response StoredResponse
	if err := cache.GetJSON(ctx, s.cache, "idempotency:"+key, &response); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return StoredResponse{}, ErrRequestIDNotFound
		}
		return StoredResponse{}, err
	}
	return response, nil
}

// RequestIDMiddleware extracts or generates X-Request-ID header
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			logger.Debug("Generated new request ID",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}

// RequestIDFromContext retrieves the request ID from a request context
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// IdempotencyMiddleware replays the stored 2xx response of a write request
// whose client-supplied X-Request-ID was already processed, and stores
// fresh 2xx responses for later replays. Keys are scoped to the
// authenticated user when AuthMiddleware ran first.
func IdempotencyMiddleware(store RequestIDStore, logger *zap.Logger, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWrite(c.Request.Method) || c.GetHeader(RequestIDHeader) == "" {
			c.Next()
			return
		}

		key := CurrentUsername(c) + ":" + GetRequestID(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path
		cached, err := store.Get(c.Request.Context(), key)
		switch {
		case err == nil:
			logger.Info("Duplicate request detected, returning cached response",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.Header(IdempotentReplayHeader, "true")
			c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return
		case !errors.Is(err, ErrRequestIDNotFound):
			// Fail open
			logger.Warn("Error reading idempotency store", zap.String("key", key), zap.Error(err))
		}

		writer := &responseWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || len(writer.body) == 0 {
			return
		}
		if err := store.Store(c.Request.Context(), key, StoredResponse{Status: status, Body: writer.body}, ttl); err != nil {
			logger.Warn("Failed to store response for idempotency",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

// responseWriter captures the response body
type responseWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
