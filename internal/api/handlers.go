package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	wordtex "github.com/wordtex/wordtex"
	"github.com/wordtex/wordtex/internal/history"
	"github.com/wordtex/wordtex/internal/pandoc"
)

type convertRequest struct {
	HTML string `json:"html"`
}

type sourceRequest struct {
	Source string `json:"source"`
	Format string `json:"format"`
}

type previewRequest struct {
	Markdown string `json:"markdown"`
}

type exportRequest struct {
	Source string `json:"source"`
	Format string `json:"format"`
	Target string `json:"target"` // "docx" or "pdf"
}

type historyInsertRequest struct {
	Tab   string `json:"tab"`
	Title string `json:"title"`
	Data  string `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.svc.EngineVersion(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"engine": version,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.Convert(r.Context(), []byte(req.HTML))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleToClipboard(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if !s.decode(w, r, &req) {
		return
	}
	format, err := wordtex.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	clip, err := s.svc.ToClipboard(r.Context(), req.Source, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clip)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !s.decode(w, r, &req) {
		return
	}
	html, err := s.svc.Preview(r.Context(), req.Markdown)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !s.decode(w, r, &req) {
		return
	}

	switch req.Target {
	case "docx":
		format, err := wordtex.ParseFormat(req.Format)
		if err != nil {
			s.writeError(w, err)
			return
		}
		out, err := s.svc.ExportDocx(r.Context(), req.Source, format)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", `attachment; filename="document.docx"`)
		_, _ = w.Write(out)
	case "pdf":
		out, err := s.svc.ExportPDF(r.Context(), req.Source)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="document.pdf"`)
		_, _ = w.Write(out)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "target must be docx or pdf",
		})
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []history.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHistoryInsert(w http.ResponseWriter, r *http.Request) {
	var req historyInsertRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Tab == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tab is required"})
		return
	}
	id, err := s.store.Insert(r.Context(), req.Tab, req.Title, req.Data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	item, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// decode reads a JSON request body. On failure it writes the 400 itself
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}

// writeError maps library errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wordtex.ErrNoInput), errors.Is(err, wordtex.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pandoc.ErrNotFound):
		status = http.StatusServiceUnavailable
	case errors.Is(err, wordtex.ErrClipboard), errors.Is(err, wordtex.ErrExport):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
