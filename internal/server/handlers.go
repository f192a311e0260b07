package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
)

// maxPageResults caps the rows rendered on the HTML page.
const maxPageResults = 200

type errorBody struct {
	Error string `json:"error"`
}

type statusBody struct {
	Status string `json:"status"`
}

// search always answers 200: a JSON array of records, or {"error"} when the
// pipeline failed.
func (s *Server) search(c echo.Context) error {
	records, err := s.deps.Searcher.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		s.logger.Error("search.failed", "query", c.QueryParam("q"), "error", err)
		return c.JSON(http.StatusOK, errorBody{Error: err.Error()})
	}
	if records == nil {
		records = []entity.ProductRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) upload(c echo.Context) error {
	if s.deps.Uploader == nil {
		return c.JSON(http.StatusOK, errorBody{Error: "uploads are disabled"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusOK, errorBody{Error: "file is required"})
	}
	opts, err := uploadOptions(c)
	if err != nil {
		return c.JSON(http.StatusOK, errorBody{Error: err.Error()})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusOK, errorBody{Error: err.Error()})
	}
	defer func() { _ = f.Close() }()

	res, err := s.deps.Uploader.IngestUpload(c.Request().Context(), fh.Filename, f, opts)
	if err != nil {
		s.logger.Warn("upload.failed", "file", fh.Filename, "error", err)
		return c.JSON(http.StatusOK, errorBody{Error: err.Error()})
	}
	s.logger.Info("upload.ok", "file", res.FileName, "status", res.Status, "records", res.Records)
	return c.JSON(http.StatusOK, statusBody{Status: "success"})
}

func uploadOptions(c echo.Context) (ingest.Options, error) {
	var opts ingest.Options
	if v := strings.TrimSpace(c.FormValue("dpi")); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil || dpi < 72 || dpi > 1200 {
			return opts, fmt.Errorf("%w: dpi must be an integer between 72 and 1200", common.ErrInvalidInput)
		}
		opts.DPI = dpi
	}
	opts.Lang = strings.TrimSpace(c.FormValue("lang"))
	return opts, nil
}

func (s *Server) index(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	data := pageData{Query: q}
	if q != "" {
		records, err := s.deps.Searcher.Search(c.Request().Context(), q)
		switch {
		case err != nil:
			data.Error = err.Error()
		default:
			if len(records) > maxPageResults {
				records = records[:maxPageResults]
			}
			data.Results = records
		}
	}
	var b strings.Builder
	if err := pageTemplate.Execute(&b, data); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, b.String())
}

func (s *Server) exportXLSX(c echo.Context) error {
	if s.deps.Exporter == nil {
		return echo.NewHTTPError(http.StatusNotFound, "export is disabled")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	records, err := s.deps.Searcher.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	b, err := s.deps.Exporter.ProductsXLSX(records)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func (s *Server) healthz(c echo.Context) error {
	if s.deps.Store == nil {
		return c.String(http.StatusOK, "ok")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("store ping timed out: %w", err)
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.String(http.StatusOK, "ok")
}
