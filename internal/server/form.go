package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// InputField is the form field carrying the text to scan.
const InputField = "inputtext"

var (
	// ErrInvalidEncoding is returned when a body without a declared charset is
	// not valid UTF-8.
	ErrInvalidEncoding = errors.New("request body is not valid UTF-8")
	// ErrUnsupportedCharset is returned for a Content-Type charset we cannot
	// decode.
	ErrUnsupportedCharset = errors.New("unsupported charset")
)

// readForm reads the whole body (bounded by limit when positive) and parses it
// as URL-encoded form data regardless of the declared media type. Values are
// returned as UTF-8: a declared non-UTF-8 charset is transcoded per value, and
// percent-decoded bytes that are still invalid become U+FFFD.
func readForm(w http.ResponseWriter, r *http.Request, limit int64) (url.Values, error) {
	enc, err := requestCharset(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	var body io.Reader = r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if enc == nil && !utf8.Valid(raw) {
		return nil, ErrInvalidEncoding
	}
	vals := parseQuery(string(raw))
	for k, vs := range vals {
		for i, v := range vs {
			vals[k][i] = toUTF8(v, enc)
		}
	}
	return vals, nil
}

// parseQuery splits a URL-encoded body on '&' only. Unlike url.ParseQuery it
// never drops a pair: ';' stays part of the value and a stray '%' that does
// not start a valid escape is kept literally.
func parseQuery(body string) url.Values {
	vals := make(url.Values)
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		vals.Add(unescape(key), unescape(value))
	}
	return vals
}

// unescape decodes '+' and %XX escapes, leaving malformed escapes as written.
func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// formText returns the first value of key, or "" when absent.
func formText(vals url.Values, key string) string {
	return vals.Get(key)
}

// requestCharset returns the decoder for a declared charset, or nil when the
// body is UTF-8 (declared or implied).
func requestCharset(contentType string) (encoding.Encoding, error) {
	if strings.TrimSpace(contentType) == "" {
		return nil, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, nil
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return nil, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, label)
	}
	if name == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

func toUTF8(v string, enc encoding.Encoding) string {
	if enc != nil {
		if s, err := enc.NewDecoder().String(v); err == nil {
			v = s
		}
	}
	return strings.ToValidUTF8(v, "\uFFFD")
}
