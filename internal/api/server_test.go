package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/wordhtml/internal/config"
	"github.com/dgallion1/wordhtml/internal/convert"
	"github.com/dgallion1/wordhtml/internal/store"
	"github.com/fumiama/go-docx"
)

func newTestServer(t *testing.T, apiKey string) (*Server, config.Config) {
	t.Helper()
	cfg := config.Config{
		Port:           "8090",
		APIKey:         apiKey,
		WorkDir:        t.TempDir(),
		MaxUploadBytes: 1 << 20,
		OutputSuffix:   convert.DefaultOutputSuffix,
		ResultTTL:      time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	conv := convert.New(convert.Options{OutputSuffix: cfg.OutputSuffix}, convert.NewStats(time.Hour), log)
	return NewServer(conv, store.New(cfg.ResultTTL), log, cfg), cfg
}

func docxBytes(t *testing.T) []byte {
	t.Helper()
	d := docx.New().WithDefaultTheme()
	d.AddParagraph().Justification("center").AddText("Hello").Bold()
	d.AddParagraph()
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/convert/document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthRequiredWhenKeyConfigured(t *testing.T) {
	s, _ := newTestServer(t, "secret")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestConvertDocument_Upload(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, "../../letter.docx", docxBytes(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := decode(t, rec)
	want := "<p style=\"text-align:center\"><span style=\"font-weight:bold\">Hello</span></p>\n<p>&nbsp;</p>"
	if out["html"] != want {
		t.Errorf("unexpected html %q", out["html"])
	}
	if out["filename"] != "letter.docx" || out["output_name"] != "letter_converted.html" {
		t.Errorf("unexpected names %v / %v", out["filename"], out["output_name"])
	}

	id, _ := out["id"].(string)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversions/"+id+"/html", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching html, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.String() != want {
		t.Errorf("unexpected stored html %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "letter_converted.html") {
		t.Errorf("unexpected content disposition %q", cd)
	}
}

func TestConvertDocument_Errors(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, "sheet.csv", []byte("a,b")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, "broken.docx", []byte("garbage")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unreadable document, got %d", rec.Code)
	}
	if msg, _ := decode(t, rec)["error"].(string); !strings.HasPrefix(msg, "could not convert the file: ") {
		t.Errorf("unexpected error message %q", msg)
	}

	big := bytes.Repeat([]byte("x"), (1<<20)+1)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, upload(t, "big.txt", big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized upload, got %d", rec.Code)
	}
}

func TestConvertText(t *testing.T) {
	s, _ := newTestServer(t, "")
	body := `{
		"text": "Hello world\n \nend",
		"styles": [{"from": {"line": 0, "col": 6}, "to": {"line": 0, "col": 11}, "style": "bold"}],
		"alignments": [{"line": 2, "align": "center"}, {"line": 2, "align": "justify"}]
	}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert/text", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	paras, _ := decode(t, rec)["paragraphs"].([]any)
	want := []string{
		`<p style="text-align:left"><span>Hello </span><span style="font-weight:bold">world</span></p>`,
		`<p>&nbsp;</p>`,
		`<p style="text-align:justify"><span>end</span></p>`,
	}
	if len(paras) != len(want) {
		t.Fatalf("expected %d paragraphs, got %v", len(want), paras)
	}
	for i := range want {
		if paras[i] != want[i] {
			t.Errorf("paragraph[%d]: expected %s, got %v", i, want[i], paras[i])
		}
	}
}

func TestConvertText_InvalidAnnotations(t *testing.T) {
	s, _ := newTestServer(t, "")
	bodies := []string{
		`{"text": "abc", "styles": [{"from": {"line": 0, "col": 0}, "to": {"line": 0, "col": 2}, "style": "strike"}]}`,
		`{"text": "abc", "styles": [{"from": {"line": 0, "col": 0}, "to": {"line": 4, "col": 0}, "style": "bold"}]}`,
		`{"text": "abc", "alignments": [{"line": 0, "align": "middle"}]}`,
		`{"text": "abc", "colour": "red"}`,
		`not json`,
	}
	for i, body := range bodies {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert/text", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestConvertPath(t *testing.T) {
	s, cfg := newTestServer(t, "")
	if err := os.MkdirAll(filepath.Join(cfg.WorkDir, "in"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.WorkDir, "in", "memo.docx"), docxBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert/path", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"path": "in/memo.docx"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if out := decode(t, rec)["output"]; out != filepath.Join("in", "memo_converted.html") {
		t.Errorf("unexpected output %v", out)
	}
	if _, err := os.Stat(filepath.Join(cfg.WorkDir, "in", "memo_converted.html")); err != nil {
		t.Errorf("expected output file: %v", err)
	}

	if rec := post(`{"path": ""}`); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for empty path, got %d", rec.Code)
	}
	if rec := post(`{"path": "../outside.docx"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for escaping path, got %d", rec.Code)
	}
	if rec := post(`{"path": "in/missing.docx"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for missing file, got %d", rec.Code)
	}
}

func TestGetConversion_NotFound(t *testing.T) {
	s, _ := newTestServer(t, "")
	for _, path := range []string{"/api/conversions/nope", "/api/conversions/nope/html"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert/text", strings.NewReader(`{"text": "x"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	out := decode(t, rec)
	conv, _ := out["conversions"].(map[string]any)
	if conv["count"] != float64(1) {
		t.Errorf("expected one conversion, got %v", conv["count"])
	}
	if out["stored_results"] != float64(1) {
		t.Errorf("expected one stored result, got %v", out["stored_results"])
	}
}
