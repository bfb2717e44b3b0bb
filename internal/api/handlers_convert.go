package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wordhtml/internal/convert"
	"github.com/dgallion1/wordhtml/internal/editor"
	"github.com/dgallion1/wordhtml/internal/parser"
	"github.com/dgallion1/wordhtml/internal/richtext"
	"github.com/dgallion1/wordhtml/internal/store"
)

// maxTextBody bounds the JSON body of text and path conversions.
const maxTextBody = 4 << 20

func (s *Server) handleConvertDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	res, err := s.converter.ConvertReader(r.Context(), bytes.NewReader(data), filename)
	if err != nil {
		s.writeConvertError(w, err)
		return
	}

	rec := s.results.Put(&store.Record{
		Source:      store.SourceDocument,
		Filename:    filename,
		OutputName:  filepath.Base(s.converter.OutputPath(filename)),
		Title:       res.Title,
		ContentHash: store.ContentHashHex(data),
		Paragraphs:  res.Paragraphs,
	})
	writeRecord(w, rec)
}

// textRequest carries an editor buffer: the text plus style toggles and
// alignments, applied in the order given.
type textRequest struct {
	Text       string         `json:"text"`
	Styles     []styleToggle  `json:"styles"`
	Alignments []alignRequest `json:"alignments"`
}

type styleToggle struct {
	From  editor.Position `json:"from"`
	To    editor.Position `json:"to"`
	Style string          `json:"style"`
}

type alignRequest struct {
	Line  int    `json:"line"`
	Align string `json:"align"`
}

func (s *Server) handleConvertText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	buf, err := req.buffer()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := s.converter.Text(buf)
	rec := s.results.Put(&store.Record{
		Source:      store.SourceText,
		ContentHash: store.ContentHashHex([]byte(req.Text)),
		Paragraphs:  res.Paragraphs,
	})
	writeRecord(w, rec)
}

func (req textRequest) buffer() (*editor.Buffer, error) {
	buf := editor.New(req.Text)
	for i, st := range req.Styles {
		style, err := richtext.ParseStyle(st.Style)
		if err != nil {
			return nil, fmt.Errorf("styles[%d]: %w", i, err)
		}
		if err := buf.ToggleStyle(editor.Selection{From: st.From, To: st.To}, style); err != nil {
			return nil, fmt.Errorf("styles[%d]: %w", i, err)
		}
	}
	for i, al := range req.Alignments {
		align, err := richtext.ParseAlignment(al.Align)
		if err != nil {
			return nil, fmt.Errorf("alignments[%d]: %w", i, err)
		}
		if err := buf.ApplyAlignment(editor.Position{Line: al.Line}, align); err != nil {
			return nil, fmt.Errorf("alignments[%d]: %w", i, err)
		}
	}
	return buf, nil
}

type pathRequest struct {
	Path string `json:"path"`
}

// handleConvertPath converts a file inside the work directory and writes the
// HTML next to it.
func (s *Server) handleConvertPath(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	path := ""
	if strings.TrimSpace(req.Path) != "" {
		full, err := s.cfg.ResolvePath(req.Path)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		path = full
	}

	res, err := s.converter.ConvertFile(r.Context(), path)
	if err != nil {
		s.writeConvertError(w, err)
		return
	}

	rel, err := filepath.Rel(s.cfg.WorkDirAbs(), res.Output)
	if err != nil {
		rel = filepath.Base(res.Output)
	}
	rec := s.results.Put(&store.Record{
		Source:     store.SourceDocument,
		Filename:   req.Path,
		OutputName: rel,
		Title:      res.Title,
		Paragraphs: res.Paragraphs,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":         rec.ID,
		"output":     rel,
		"paragraphs": len(rec.Paragraphs),
	})
}

// writeConvertError maps conversion failures onto status codes. Read and
// write failures carry the same message shape; only the status differs.
func (s *Server) writeConvertError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, convert.ErrCancelled):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, convert.ErrRead):
		jsonError(w, "could not convert the file: "+causeOf(err), http.StatusUnprocessableEntity)
	case errors.Is(err, convert.ErrWrite):
		jsonError(w, "could not convert the file: "+causeOf(err), http.StatusInternalServerError)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

// causeOf strips the server-side path from a conversion error.
func causeOf(err error) string {
	var convErr *convert.Error
	if errors.As(err, &convErr) && convErr.Err != nil {
		return convErr.Err.Error()
	}
	return err.Error()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeRecord(w http.ResponseWriter, rec *store.Record) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":          rec.ID,
		"filename":    rec.Filename,
		"output_name": rec.OutputName,
		"paragraphs":  rec.Paragraphs,
		"html":        rec.HTML(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
