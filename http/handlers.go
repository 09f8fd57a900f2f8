package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/extract"
	"github.com/go-chi/chi/v5"
)

// recordView is the JSON shape of an extracted record.
type recordView struct {
	Title           string   `json:"title"`
	Location        string   `json:"url"`
	Excerpt         string   `json:"excerpt,omitempty"`
	Byline          string   `json:"byline,omitempty"`
	EstimatedTokens int      `json:"estimatedTokens"`
	ContentHash     string   `json:"contentHash"`
	IsFallback      bool     `json:"isFallback"`
	IsPDF           bool     `json:"isPdf"`
	Sufficient      bool     `json:"sufficient"`
	Paragraphs      []string `json:"paragraphs"`
}

func newRecordView(record *excerpt.ContentRecord) recordView {
	v := recordView{
		Title:           record.Title,
		Location:        record.Location,
		Excerpt:         record.Excerpt,
		Byline:          record.Byline,
		EstimatedTokens: record.EstimatedTokens,
		ContentHash:     record.ContentHash,
		IsFallback:      record.IsFallback,
		IsPDF:           record.IsPDF,
		Sufficient:      excerpt.HasSufficientContent(record),
		Paragraphs:      make([]string, len(record.Paragraphs)),
	}
	for i, p := range record.Paragraphs {
		v.Paragraphs[i] = p.Text
	}
	return v
}

type contextResponse struct {
	*extract.Response
	Record recordView `json:"record"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extract.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Location == "" {
		s.respondError(w, http.StatusBadRequest, "url required")
		return
	}

	doc, err := s.workflow.Opener.Open(r.Context(), req.Location)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if c, ok := doc.(io.Closer); ok {
		defer c.Close()
	}
	record, err := s.content.Extract(r.Context(), doc)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newRecordView(record))
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, false)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, true)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, explain bool) {
	var req extract.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Explain = explain

	resp, err := s.workflow.Run(r.Context(), req)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, contextResponse{Response: resp, Record: newRecordView(resp.Record)})
}

type locateRequest struct {
	Selection string `json:"selection"`
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, s.content.LocateSelection(req.Selection))
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.content.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}

	filter := excerpt.ExcerptFilter{}
	if loc := r.URL.Query().Get("url"); loc != "" {
		filter.Location = &loc
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	excerpts, err := s.history.FindExcerpts(r.Context(), filter)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if excerpts == nil {
		excerpts = []*excerpt.Excerpt{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"excerpts": excerpts})
}

func (s *Server) handleGetExcerpt(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	e, err := s.history.FindExcerptByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondErr maps application error codes to HTTP statuses.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch excerpt.ErrorCode(err) {
	case excerpt.EINVALID:
		status = http.StatusBadRequest
	case excerpt.ENOTFOUND:
		status = http.StatusNotFound
	case excerpt.EUNAVAILABLE, excerpt.EPDFUNAVAILABLE:
		status = http.StatusUnprocessableEntity
	}

	var appErr *excerpt.Error
	if errors.As(err, &appErr) {
		s.respondJSON(w, status, map[string]string{"error": appErr.Message, "code": appErr.Code})
		return
	}

	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	s.respondError(w, status, excerpt.ErrorMessage(err))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
