// Package api exposes search, the download queue, the library and the
// settings over a local REST API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/download"
	"github.com/ytget/mp3me/internal/library"
	"github.com/ytget/mp3me/internal/model"
	"github.com/ytget/mp3me/internal/telemetry"
)

// DefaultAddr is the listen address when none is configured
const DefaultAddr = "127.0.0.1:8765"

// Searcher runs catalogue searches
type Searcher interface {
	Search(ctx context.Context, query string, types ...model.ContentType) ([]model.SearchResult, error)
	SetLimit(n int)
}

// CoverCache bounds the artwork cache
type CoverCache interface {
	SetMaxCacheMB(mb int)
}

// TrackIndex lists library tracks
type TrackIndex interface {
	Tracks(ctx context.Context, filter string) ([]library.Track, error)
}

// LibraryScanner indexes the download folder
type LibraryScanner interface {
	Scan(ctx context.Context, root string, onProgress library.ScanProgress) (int, error)
}

// Deps are the services behind the routes
type Deps struct {
	Search    Searcher
	Downloads download.Downloader
	Library   TrackIndex
	Scanner   LibraryScanner
	Artwork   CoverCache
	Settings  *config.Settings
	Version   string
}

// Server is the REST API
type Server struct {
	deps   Deps
	router *gin.Engine
}

// New builds the router
func New(deps Deps) *Server {
	s := &Server{deps: deps}

	router := gin.New()
	router.Use(gin.Recovery(), telemetry.GinMiddleware(), requestLogger())

	router.GET("/health", s.health)
	router.GET("/search", s.search)

	router.GET("/downloads", s.listDownloads)
	router.POST("/downloads", s.addDownload)
	router.DELETE("/downloads/:id", s.deleteDownload)
	router.POST("/downloads/:id/retry", s.retryDownload)

	router.GET("/library", s.listLibrary)
	router.POST("/library/scan", s.scanLibrary)

	router.GET("/settings", s.getSettings)
	router.PUT("/settings", s.putSettings)

	s.router = router
	return s
}

// Router returns the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := log.WithFields(log.Fields{"module": "api", "function": "Run"})

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"module":   "api",
			"function": "request",
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("Handled request")
	}
}

func abort(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{"module": "api", "function": c.HandlerName()}).Errorf("Request failed: %v", err)
		telemetry.CaptureError(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
