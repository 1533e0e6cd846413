package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	wordtex "github.com/wordtex/wordtex"
	"github.com/wordtex/wordtex/internal/history"
)

// stubService returns canned results without touching Pandoc.
type stubService struct {
	convertErr error
	version    string
	versionErr error
}

func (s *stubService) Convert(_ context.Context, clipboard []byte) (*wordtex.Result, error) {
	if s.convertErr != nil {
		return nil, s.convertErr
	}
	if len(bytes.TrimSpace(clipboard)) == 0 {
		return nil, wordtex.ErrNoInput
	}
	return &wordtex.Result{
		LaTeX:    "converted latex",
		Markdown: "converted markdown",
		HTML:     "<p>converted</p>",
		Warnings: []string{"one warning"},
	}, nil
}

func (s *stubService) ToClipboard(_ context.Context, source string, format wordtex.Format) (*wordtex.Clipboard, error) {
	if strings.TrimSpace(source) == "" {
		return nil, wordtex.ErrNoInput
	}
	return &wordtex.Clipboard{Payload: []byte("Version:0.9\r\n"), Fragment: "<p>frag</p>"}, nil
}

func (s *stubService) Preview(_ context.Context, markdown string) (string, error) {
	return "<h1>preview</h1>", nil
}

func (s *stubService) ExportDocx(_ context.Context, _ string, _ wordtex.Format) ([]byte, error) {
	return []byte("PK docx"), nil
}

func (s *stubService) ExportPDF(_ context.Context, _ string) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

func (s *stubService) EngineVersion(context.Context) (string, error) {
	return s.version, s.versionErr
}

func newTestServer(t *testing.T, svc Service) *Server {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), 50)
	if err != nil {
		t.Fatalf("opening history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(svc, store, log, 1<<20)
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{version: "pandoc 3.1.9"})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["engine"] != "pandoc 3.1.9" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthDegraded(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{versionErr: wordtex.ErrExport})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %q, want degraded", body["status"])
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/convert", convertRequest{HTML: "<p>hello</p>"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var res wordtex.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.LaTeX != "converted latex" {
		t.Errorf("LaTeX = %q", res.LaTeX)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", res.Warnings)
	}
}

func TestConvertEmptyInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/convert", convertRequest{HTML: "  "})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConvertBadJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestToClipboardUnknownFormat(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/to-clipboard", sourceRequest{Source: "x", Format: "rtf"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestToClipboard(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/to-clipboard", sourceRequest{Source: "$x$", Format: "markdown"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body)
	}
	var clip wordtex.Clipboard
	if err := json.Unmarshal(rec.Body.Bytes(), &clip); err != nil {
		t.Fatal(err)
	}
	if clip.Fragment != "<p>frag</p>" {
		t.Errorf("Fragment = %q", clip.Fragment)
	}
}

func TestExportPDF(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/export", exportRequest{Source: "# Doc", Format: "markdown", Target: "pdf"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestExportUnknownTarget(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/export", exportRequest{Source: "x", Format: "markdown", Target: "rtf"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})

	rec := postJSON(t, srv, "/api/history", historyInsertRequest{Tab: "convert", Title: "t", Data: "{}"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("insert status = %d, want 201, body %s", rec.Code, rec.Body)
	}
	var created map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history?tab=convert", nil)
	listRec := httptest.NewRecorder()
	srv.ServeHTTP(listRec, req)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d", listRec.Code)
	}
	var items []history.Item
	if err := json.Unmarshal(listRec.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != created["id"] {
		t.Errorf("items = %+v, want the inserted row", items)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/history/"+strconv.FormatInt(created["id"], 10), nil)
	delRec := httptest.NewRecorder()
	srv.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", delRec.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/history/"+strconv.FormatInt(created["id"], 10), nil)
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", getRec.Code)
	}
}

func TestHistoryInsertRequiresTab(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubService{})
	rec := postJSON(t, srv, "/api/history", historyInsertRequest{Title: "t"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

