package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	rec := s.results.Get(chi.URLParam(r, "id"))
	if rec == nil {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleGetConversionHTML(w http.ResponseWriter, r *http.Request) {
	rec := s.results.Get(chi.URLParam(r, "id"))
	if rec == nil {
		jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if rec.OutputName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+sanitizeFilename(rec.OutputName)+`"`)
	}
	w.Write([]byte(rec.HTML()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"conversions":    s.converter.Stats().Snapshot(),
		"stored_results": s.results.Len(),
	})
}
