package httpx

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

type createBody struct {
	URL string `json:"url"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantURL     string
		errContains string
	}{
		{name: "valid", body: `{"url":"https://example.com/a"}`, wantURL: "https://example.com/a"},
		{name: "empty body", body: "", errContains: "request body is empty"},
		{name: "syntax error", body: `{"url":"https://example.com",}`, errContains: "malformed JSON"},
		{name: "truncated", body: `{"url":"https://exa`, errContains: "malformed JSON"},
		{name: "unknown field", body: `{"url":"https://example.com","code":"x"}`, errContains: "unknown field"},
		{name: "wrong type", body: `{"url":42}`, errContains: `invalid value for field "url"`},
		{name: "two objects", body: `{"url":"a"}{"url":"b"}`, errContains: "multiple JSON objects"},
		{name: "too large", body: `{"url":"` + strings.Repeat("x", MaxRequestBodySize) + `"}`, errContains: "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/create", strings.NewReader(tt.body))

			got, err := DecodeJSON[createBody](req)
			if tt.errContains != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errContains)
				}
				if got != (createBody{}) {
					t.Errorf("expected zero value on error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", got.URL, tt.wantURL)
			}
		})
	}
}

func TestDecodeJSON_ContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{contentType: "", wantErr: false},
		{contentType: "application/json", wantErr: false},
		{contentType: "application/json; charset=utf-8", wantErr: false},
		{contentType: "text/plain", wantErr: true},
		{contentType: "application/x-www-form-urlencoded", wantErr: true},
		{contentType: ";;", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/create", strings.NewReader(`{"url":"https://example.com"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			_, err := DecodeJSON[createBody](req)
			if tt.wantErr && !errors.Is(err, ErrContentType) {
				t.Errorf("err = %v, want ErrContentType", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodeJSON_ClosesBody(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"url":"https://example.com"}`)}
	req := httptest.NewRequest("POST", "/api/create", body)

	if _, err := DecodeJSON[createBody](req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body.closed {
		t.Error("body was not closed")
	}
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
