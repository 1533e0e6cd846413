// Package api exposes the converter over HTTP for the browser UI.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	wordtex "github.com/wordtex/wordtex"
	"github.com/wordtex/wordtex/internal/history"
)

// Service is the converter surface the server needs. *wordtex.Converter
// implements it; tests use a stub.
type Service interface {
	Convert(ctx context.Context, clipboard []byte) (*wordtex.Result, error)
	ToClipboard(ctx context.Context, source string, format wordtex.Format) (*wordtex.Clipboard, error)
	Preview(ctx context.Context, markdown string) (string, error)
	ExportDocx(ctx context.Context, source string, format wordtex.Format) ([]byte, error)
	ExportPDF(ctx context.Context, markdown string) ([]byte, error)
	EngineVersion(ctx context.Context) (string, error)
}

var _ Service = (*wordtex.Converter)(nil)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	svc     Service
	store   *history.Store // nil disables the history endpoints
	log     *slog.Logger
	maxBody int64
}

// NewServer creates and configures the server. A nil store turns the
// history endpoints into 404s.
func NewServer(svc Service, store *history.Store, log *slog.Logger, maxBody int64) *Server {
	s := &Server{
		svc:     svc,
		store:   store,
		log:     log,
		maxBody: maxBody,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(limitBody(s.maxBody))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/convert", s.handleConvert)
	r.Post("/api/to-clipboard", s.handleToClipboard)
	r.Post("/api/preview", s.handlePreview)
	r.Post("/api/export", s.handleExport)

	if s.store != nil {
		r.Get("/api/history", s.handleHistoryList)
		r.Post("/api/history", s.handleHistoryInsert)
		r.Get("/api/history/{id}", s.handleHistoryGet)
		r.Delete("/api/history/{id}", s.handleHistoryDelete)
	}

	s.router = r
}
