package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/catalogue-search/constants"
	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/ingest"
	"github.com/joseph-ayodele/catalogue-search/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSearcher struct {
	records []entity.ProductRecord
	err     error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, q string) ([]entity.ProductRecord, error) {
	s.queries = append(s.queries, q)
	return s.records, s.err
}

type stubUploader struct {
	name string
	body string
	opts ingest.Options
	err  error
}

func (u *stubUploader) IngestUpload(_ context.Context, fileName string, r io.Reader, opts ingest.Options) (ingest.DocumentResult, error) {
	b, _ := io.ReadAll(r)
	u.name, u.body, u.opts = fileName, string(b), opts
	if u.err != nil {
		return ingest.DocumentResult{}, u.err
	}
	return ingest.DocumentResult{FileName: fileName, Status: constants.DocumentStatusOK, Records: 2}, nil
}

type stubExporter struct{ got []entity.ProductRecord }

func (e *stubExporter) ProductsXLSX(records []entity.ProductRecord) ([]byte, error) {
	e.got = records
	return []byte("xlsx"), nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSearch(t *testing.T) {
	searcher := &stubSearcher{records: []entity.ProductRecord{{ProductName: "Ghee 500ml", CatalogueLink: "acme.pdf"}}}
	s := New(Deps{Searcher: searcher}, discardLogger())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/search?q=ghee", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []entity.ProductRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, searcher.records, got)
	assert.Equal(t, []string{"ghee"}, searcher.queries)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSearch_EmptyIsArray(t *testing.T) {
	s := New(Deps{Searcher: &stubSearcher{}}, discardLogger())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/search?q=%20%20", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearch_ErrorIsPayloadNotStatus(t *testing.T) {
	s := New(Deps{Searcher: &stubSearcher{err: errors.New("sqlite store: search: database is locked")}}, discardLogger())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/search?q=ghee", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"sqlite store: search: database is locked"}`, rec.Body.String())
}

func multipartUpload(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	up := &stubUploader{}
	s := New(Deps{Searcher: &stubSearcher{}, Uploader: up}, discardLogger())

	for _, path := range []string{"/upload-pdf/", "/upload-pdf"} {
		rec := do(t, s, multipartUpload(t, path, "acme.pdf", "%PDF-1.4", map[string]string{"dpi": "200", "lang": "ind"}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
		assert.Equal(t, "acme.pdf", up.name)
		assert.Equal(t, "%PDF-1.4", up.body)
		assert.Equal(t, ingest.Options{DPI: 200, Lang: "ind"}, up.opts)
	}
}

func TestUpload_Errors(t *testing.T) {
	up := &stubUploader{err: common.NewAppError("INGEST", "store failed", common.ErrStore)}
	s := New(Deps{Searcher: &stubSearcher{}, Uploader: up}, discardLogger())

	rec := do(t, s, multipartUpload(t, "/upload-pdf/", "acme.pdf", "x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = do(t, s, multipartUpload(t, "/upload-pdf/", "", "", nil))
	assert.JSONEq(t, `{"error":"file is required"}`, rec.Body.String())

	rec = do(t, s, multipartUpload(t, "/upload-pdf/", "acme.pdf", "x", map[string]string{"dpi": "abc"}))
	assert.Contains(t, rec.Body.String(), "dpi must be")
}

func TestIndexPage(t *testing.T) {
	searcher := &stubSearcher{records: []entity.ProductRecord{{
		ProductName:   "Ghee <500ml>",
		CompanyName:   "Acme Foods",
		Website:       "https://acme.example",
		CatalogueLink: "acme.pdf",
	}}}
	s := New(Deps{Searcher: searcher}, discardLogger())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/?q=ghee", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Results (1):")
	assert.Contains(t, body, "Ghee &lt;500ml&gt;")
	assert.Contains(t, body, `href="acme.pdf"`)
	assert.Contains(t, body, "Open Catalogue")

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "No query provided.")
	assert.Len(t, searcher.queries, 1)
}

func TestIndexPage_NoResultsAndError(t *testing.T) {
	s := New(Deps{Searcher: &stubSearcher{}}, discardLogger())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/?q=saffron", nil))
	assert.Contains(t, rec.Body.String(), "No results found for: <strong>saffron</strong>")

	s = New(Deps{Searcher: &stubSearcher{err: errors.New("boom")}}, discardLogger())
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/?q=ghee", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: boom")
}

func TestIndexPage_CapsResults(t *testing.T) {
	records := make([]entity.ProductRecord, maxPageResults+5)
	for i := range records {
		records[i] = entity.ProductRecord{ProductName: "Ghee"}
	}
	s := New(Deps{Searcher: &stubSearcher{records: records}}, discardLogger())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/?q=ghee", nil))
	assert.Contains(t, rec.Body.String(), "Results (200):")
}

func TestExportXLSX(t *testing.T) {
	searcher := &stubSearcher{records: []entity.ProductRecord{{ProductName: "Ghee"}}}
	exp := &stubExporter{}
	s := New(Deps{Searcher: searcher, Exporter: exp}, discardLogger())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/export.xlsx?q=ghee", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xlsx", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products.xlsx")
	assert.Equal(t, searcher.records, exp.got)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"q is required"}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s := New(Deps{Searcher: &stubSearcher{}, Store: stubPinger{}}, discardLogger())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	s = New(Deps{Searcher: &stubSearcher{}, Store: stubPinger{err: errors.New("down")}}, discardLogger())
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"down"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.SearchObserved(metrics.OutcomeOK, 3, 10*time.Millisecond)

	s := New(Deps{Searcher: &stubSearcher{}, Gatherer: reg}, discardLogger())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "search_requests_total"))
}

func TestGRPCHealth(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	ping := &togglePinger{}
	g := NewGRPCHealth(ping, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	client := healthpb.NewHealthClient(conn)

	require.Eventually(t, func() bool {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthService})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)

	ping.err = errors.New("down")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, g.Check(context.Background()))
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	cancel()
	assert.NoError(t, <-done)
}

type togglePinger struct{ err error }

func (p *togglePinger) Ping(context.Context) error { return p.err }
