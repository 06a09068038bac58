package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/textextract/internal/extract"
	"github.com/hyperifyio/textextract/internal/metrics"
	"github.com/hyperifyio/textextract/internal/patterns"
	"github.com/hyperifyio/textextract/internal/render"
)

func newTestServer(opts Options) http.Handler {
	nop := zerolog.Nop()
	if opts.Logger == nil {
		opts.Logger = &nop
	}
	return New(opts).Handler()
}

func postForm(h http.Handler, path string, vals url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGet_ReturnsEmptyForm(t *testing.T) {
	h := newTestServer(Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("Content-Type=%q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<textarea") || !strings.Contains(body, "\n</textarea>") {
		t.Fatalf("expected empty textarea:\n%s", body)
	}
	if strings.Contains(body, `class="results"`) {
		t.Fatalf("GET must not render a results section")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestPost_ExtractsAndRenders(t *testing.T) {
	h := newTestServer(Options{})
	rec := postForm(h, "/", url.Values{InputField: {"Contact: a@b.com or see https://x.com at 9:05 AM"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<h3>Emails (1)</h3>", "<li>a@b.com</li>",
		"<h3>URLs (1)</h3>", "<li>https://x.com</li>",
		"<h3>Phone Numbers (0)</h3>", "<h3>Credit Cards (0)</h3>",
		"<h3>Times (1)</h3>", "<li>9:05 AM</li>",
		"Contact: a@b.com or see https://x.com at 9:05 AM</textarea>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestPost_MissingFieldAndEmptyBody(t *testing.T) {
	h := newTestServer(Options{})
	for name, req := range map[string]*http.Request{
		"no field": httptest.NewRequest(http.MethodPost, "/", strings.NewReader("other=1")),
		"no body":  httptest.NewRequest(http.MethodPost, "/", nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status=%d, want 200", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "No matches found.") {
				t.Fatalf("expected no-matches section:\n%s", rec.Body.String())
			}
		})
	}
}

func TestPost_RejectsInvalidUTF8(t *testing.T) {
	h := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("inputtext=caf\xe9")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not valid UTF-8") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestPost_DeclaredCharsetIsTranscoded(t *testing.T) {
	h := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("inputtext=caf%E9+a@b.com")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=ISO-8859-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "café a@b.com</textarea>") {
		t.Fatalf("expected transcoded text:\n%s", rec.Body.String())
	}
}

func TestPost_UnknownCharset(t *testing.T) {
	h := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("inputtext=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=klingon")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestPost_InvalidPercentEscapesAreReplaced(t *testing.T) {
	h := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("inputtext=caf%E9"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "caf\uFFFD</textarea>") {
		t.Fatalf("expected replacement character:\n%s", rec.Body.String())
	}
}

// Bodies written by hand (curl -d, scripts) may carry a bare '%' or ';'; the
// text must still reach the extractor.
func TestPost_UnencodedPercentAndSemicolon(t *testing.T) {
	h := newTestServer(Options{})
	tests := []struct {
		body     string
		wantText string
		wantLi   []string
	}{
		{"inputtext=Save 50% now, mail a@b.com", "Save 50% now, mail a@b.com</textarea>", []string{"<li>a@b.com</li>"}},
		{"inputtext=a@b.com;c@d.com", "a@b.com;c@d.com</textarea>", []string{"<li>a@b.com</li>", "<li>c@d.com</li>"}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status=%d, want 200", rec.Code)
			}
			body := rec.Body.String()
			if strings.Contains(body, "No matches found.") {
				t.Fatalf("input was dropped:\n%s", body)
			}
			for _, want := range append([]string{tt.wantText}, tt.wantLi...) {
				if !strings.Contains(body, want) {
					t.Fatalf("body missing %q:\n%s", want, body)
				}
			}
		})
	}
}

func TestPost_BodyLimit(t *testing.T) {
	h := newTestServer(Options{MaxBodyBytes: 16})
	rec := postForm(h, "/", url.Values{InputField: {strings.Repeat("a", 64)}})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d, want 413", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "16 B") {
		t.Fatalf("expected limit in message, got %q", rec.Body.String())
	}
}

func TestPost_NegativeLimitDisablesCap(t *testing.T) {
	h := newTestServer(Options{MaxBodyBytes: -1})
	rec := postForm(h, "/", url.Values{InputField: {strings.Repeat("a", int(2*DefaultMaxBodyBytes)) + " a@b.com"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<li>a@b.com</li>") {
		t.Fatalf("expected match past the default limit")
	}
}

func TestOtherMethodsNotAllowed(t *testing.T) {
	h := newTestServer(Options{})
	for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(m, "/", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s status=%d, want 405", m, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d, want 404", rec.Code)
	}
}

func TestDownload_Formats(t *testing.T) {
	h := newTestServer(Options{})
	input := "mail a@b.com"

	rec := postForm(h, "/download", url.Values{InputField: {input}})
	if rec.Code != http.StatusOK {
		t.Fatalf("txt status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("txt Content-Type=%q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="extracted.txt"` {
		t.Fatalf("Content-Disposition=%q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Emails (1):\n  a@b.com\n") {
		t.Fatalf("txt body=%q", rec.Body.String())
	}

	rec = postForm(h, "/download", url.Values{InputField: {input}, "format": {"json"}})
	var rep render.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if rep.Total != 1 {
		t.Fatalf("json total=%d", rep.Total)
	}

	rec = postForm(h, "/download", url.Values{InputField: {input}, "format": {"pdf"}})
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("pdf body does not look like a PDF")
	}

	rec = postForm(h, "/download", url.Values{InputField: {input}, "format": {"docx"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format status=%d, want 400", rec.Code)
	}
}

type stubExtractor struct {
	calls []string
}

func (s *stubExtractor) Extract(text string) extract.Result {
	s.calls = append(s.calls, text)
	return extract.NewResult(map[patterns.Name][]string{patterns.Times: {"12:00"}})
}

func TestPost_UsesConfiguredExtractorAndStyle(t *testing.T) {
	stub := &stubExtractor{}
	h := newTestServer(Options{Extractor: stub, Renderer: render.New("pre")})
	rec := postForm(h, "/", url.Values{InputField: {"anything"}})
	if len(stub.calls) != 1 || stub.calls[0] != "anything" {
		t.Fatalf("extractor calls=%q", stub.calls)
	}
	if !strings.Contains(rec.Body.String(), "Times (1):\n  12:00") {
		t.Fatalf("expected pre report:\n%s", rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	h := newTestServer(Options{Metrics: m})
	postForm(h, "/", url.Values{InputField: {"a@b.com"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz=%d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `textextract_matches_total{category="Emails"} 1`) {
		t.Fatalf("metrics missing email count:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	newTestServer(Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("metrics disabled should 404, got %d", rec.Code)
	}
}
