package middleware

import (
	"compress/gzip"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum first write to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig returns the default compression configuration.
// Workbooks are already zip archives and are left alone.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"application/javascript",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	level := config.CompressionLevel
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler returns a Gin middleware that gzips compressible responses for
// clients that accept it. Websocket upgrades pass through untouched.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cm.clientAcceptsGzip(c) || strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		gzw := &gzipResponseWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = gzw
		defer func() {
			c.Writer = gzw.ResponseWriter
			gzw.finish()
		}()

		c.Next()
	}
}

// clientAcceptsGzip checks if the client accepts gzip compression
func (cm *CompressionMiddleware) clientAcceptsGzip(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept-Encoding"), "gzip")
}

// shouldCompress checks if the content type should be compressed
func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipResponseWriter decides on the first write whether the body is gzipped.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm *CompressionMiddleware

	decided    bool
	gz         *gzip.Writer
	counter    *countingWriter
	original   int64
	compressed bool
}

func (gzw *gzipResponseWriter) decide(first []byte) {
	gzw.decided = true

	h := gzw.Header()
	if h.Get("Content-Encoding") != "" || len(first) < gzw.cm.config.MinSize || !gzw.cm.shouldCompress(h.Get("Content-Type")) {
		return
	}

	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	h.Del("Content-Length")

	gzw.counter = &countingWriter{w: gzw.ResponseWriter}
	gzw.gz = gzw.cm.pool.Get().(*gzip.Writer)
	gzw.gz.Reset(gzw.counter)
	gzw.compressed = true
}

// Write writes data through the gzip writer once compression is on.
func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	if !gzw.decided {
		gzw.decide(data)
	}
	gzw.original += int64(len(data))
	if !gzw.compressed {
		return gzw.ResponseWriter.Write(data)
	}
	return gzw.gz.Write(data)
}

func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// Flush flushes the gzip writer
func (gzw *gzipResponseWriter) Flush() {
	if gzw.gz != nil {
		if err := gzw.gz.Flush(); err != nil {
			slog.Debug("gzip flush failed", "error", err)
		}
	}
	gzw.ResponseWriter.Flush()
}

func (gzw *gzipResponseWriter) finish() {
	if !gzw.decided {
		return
	}
	var compressedSize int64
	if gzw.gz != nil {
		if err := gzw.gz.Close(); err != nil {
			slog.Debug("gzip close failed", "error", err)
		}
		gzw.gz.Reset(io.Discard)
		gzw.cm.pool.Put(gzw.gz)
		gzw.gz = nil
		compressedSize = gzw.counter.n
	}
	gzw.cm.stats.RecordRequest(gzw.original, compressedSize, gzw.compressed)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	// bytes of the responses that were compressed, before compression
	CompressibleBytes int64
	mutex             sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
		cs.CompressibleBytes += originalSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(0)
	if cs.CompressibleBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.CompressibleBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"compressed_bytes":    cs.CompressedBytes,
		"compression_ratio":   compressionRatio,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
