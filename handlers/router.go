package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bububa/teachassist/logger"
)

// NewRouter exposes the entry points over http for local serving
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(), CORSMiddleware())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stage": h.stage})
	})
	for path, fn := range map[string]HandlerFunc{
		"/math":    h.Math,
		"/weather": h.Weather,
		"/teacher": h.Teacher,
	} {
		r.POST(path, Adapt(fn))
		r.OPTIONS(path, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}
	return r
}

// Adapt serves a lambda style handler, the request body is the event
func Adapt(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			resp := internalError(err)
			writeResponse(c, resp.StatusCode, resp.Headers, resp.Body)
			return
		}
		ctx := logger.ContextWithLogger(c.Request.Context(), logger.With("path", c.FullPath()))
		resp, err := fn(ctx, body)
		if err != nil {
			resp = internalError(err)
		}
		writeResponse(c, resp.StatusCode, resp.Headers, resp.Body)
	}
}

func writeResponse(c *gin.Context, status int, headers map[string]string, body string) {
	for k, v := range headers {
		c.Writer.Header().Set(k, v)
	}
	c.Data(status, headers["Content-Type"], []byte(body))
}

// LoggerMiddleware returns a Gin middleware for request logging
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		logger.Info("request completed",
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"status_code", c.Writer.Status(),
			"body_size", c.Writer.Size(),
			"path", path,
		)
	}
}

// CORSMiddleware answers preflight requests and sets the CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, k := range []string{
			"Access-Control-Allow-Origin",
			"Access-Control-Allow-Headers",
			"Access-Control-Allow-Methods",
		} {
			c.Writer.Header().Set(k, Headers[k])
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
