package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "response_meta_start"
	cacheHitKey      = "cache_hit"
	processingTimeMS = "processing_time_ms"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata collected for this request merged with
// extra, stamped with the elapsed processing time. It returns nil when there
// is nothing to report.
func ExtractMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if c != nil {
		if meta, exists := c.Get(responseMetaKey); exists {
			if typed, ok := meta.(map[string]interface{}); ok {
				for k, v := range typed {
					out[k] = v
				}
			}
		}
		if start, ok := c.Get(requestStartKey); ok {
			if t, ok := start.(time.Time); ok {
				out[processingTimeMS] = time.Since(t).Milliseconds()
			}
		}
	}
	for k, v := range extra {
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	newMeta := make(map[string]interface{})
	c.Set(responseMetaKey, newMeta)
	return newMeta
}
