package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/domain/services"
)

// CacheConfig configures Cache.
type CacheConfig struct {
	Tag        string                    // invalidation group the cached responses belong to
	Expiration time.Duration             // entry lifetime
	KeyFunc    func(*gin.Context) string // cache key fingerprint
}

const defaultCacheExpiration = 5 * time.Minute

// defaultKeyFunc fingerprints the caller, path and sorted query string.
func defaultKeyFunc(c *gin.Context) string {
	queryParams := c.Request.URL.Query()
	queryKeys := make([]string, 0, len(queryParams))
	for key := range queryParams {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)

	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s?", CurrentUserID(c), c.Request.URL.Path)
	for _, key := range queryKeys {
		values := append([]string(nil), queryParams[key]...)
		sort.Strings(values)
		for _, value := range values {
			b.WriteString(key + "=" + value + "&")
		}
	}

	hasher := md5.New()
	hasher.Write([]byte(b.String()))
	return hex.EncodeToString(hasher.Sum(nil))
}

// Cache serves GET responses from cacheService and stores successful ones under cfg.Tag.
// Cache errors are logged and the request falls through to the handler.
func Cache(cacheService services.InterfaceCacheService, logger *zap.Logger, cfg CacheConfig) gin.HandlerFunc {
	if cfg.Expiration <= 0 {
		cfg.Expiration = defaultCacheExpiration
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultKeyFunc
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := services.CacheKey(cfg.Tag, cfg.KeyFunc(c))

		content, found, err := cacheService.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		if found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", content)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		if err := cacheService.Set(ctx, cfg.Tag, key, writer.body.Bytes(), cfg.Expiration); err != nil {
			logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// responseWriter copies the response body so it can be cached.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
