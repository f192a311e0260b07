package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

// Searcher answers one free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]entity.ProductRecord, error)
}

// Uploader ingests one uploaded file.
type Uploader interface {
	IngestUpload(ctx context.Context, fileName string, r io.Reader, opts ingest.Options) (ingest.DocumentResult, error)
}

// Exporter renders records as a workbook.
type Exporter interface {
	ProductsXLSX(records []entity.ProductRecord) ([]byte, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Searcher Searcher
	Uploader Uploader
	Exporter Exporter
	Store    Pinger
	Gatherer prometheus.Gatherer // defaults to prometheus.DefaultGatherer
}

// Server is the HTTP surface of the catalogue: search, upload, the HTML
// search page, health and metrics.
type Server struct {
	e      *echo.Echo
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{e: e, deps: deps, logger: logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/", s.index)
	s.e.GET("/search", s.search)
	s.e.POST("/upload-pdf", s.upload)
	s.e.POST("/upload-pdf/", s.upload)
	s.e.GET("/export.xlsx", s.exportXLSX)
	s.e.GET("/healthz", s.healthz)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
}

func (s *Server) Handler() http.Handler { return s.e }

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.e.Shutdown(shutdownCtx)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				logger.Warn("http.request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("http.request", attrs...)
			return nil
		},
	})
}

func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("http.error", "path", c.Request().URL.Path, "error", err)
		}
		if !c.Response().Committed {
			_ = c.JSON(code, errorBody{Error: msg})
		}
	}
}
