package server

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRequestCharset(t *testing.T) {
	tests := []struct {
		contentType string
		wantEnc     bool
		wantErr     error
	}{
		{"", false, nil},
		{"application/x-www-form-urlencoded", false, nil},
		{"application/x-www-form-urlencoded; charset=UTF-8", false, nil},
		{"application/x-www-form-urlencoded; charset=utf8", false, nil},
		{"application/x-www-form-urlencoded; charset=windows-1252", true, nil},
		{"text/plain; charset=shift_jis", true, nil},
		{"application/x-www-form-urlencoded; charset=nope", false, ErrUnsupportedCharset},
		{";;not a media type", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			enc, err := requestCharset(tt.contentType)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v, want %v", err, tt.wantErr)
			}
			if (enc != nil) != tt.wantEnc {
				t.Fatalf("enc=%v, wantEnc %v", enc, tt.wantEnc)
			}
		})
	}
}

func TestToUTF8(t *testing.T) {
	if got := toUTF8("ok ✓", nil); got != "ok ✓" {
		t.Fatalf("valid UTF-8 changed: %q", got)
	}
	if got := toUTF8("bad\xff", nil); got != "bad�" {
		t.Fatalf("invalid UTF-8 not replaced: %q", got)
	}
}

func TestParseQuery_KeepsMalformedPairs(t *testing.T) {
	tests := []struct {
		body string
		want url.Values
	}{
		{"inputtext=a+b%40c.com", url.Values{"inputtext": {"a b@c.com"}}},
		{"inputtext=50%+off", url.Values{"inputtext": {"50% off"}}},
		{"inputtext=%41%4", url.Values{"inputtext": {"A%4"}}},
		{"inputtext=x;y=z", url.Values{"inputtext": {"x;y=z"}}},
		{"a=1&&b=%zz&c", url.Values{"a": {"1"}, "b": {"%zz"}, "c": {""}}},
		{"k=1&k=2", url.Values{"k": {"1", "2"}}},
		{"", url.Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseQuery(tt.body)); diff != "" {
				t.Fatalf("parseQuery(%q) mismatch (-want +got):\n%s", tt.body, diff)
			}
		})
	}
}
