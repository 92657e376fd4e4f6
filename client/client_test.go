package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://bad"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestClient_CreateLink(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "Ab12Cd", "url": body["url"]})
	})

	link, err := c.CreateLink(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, Link{Code: "Ab12Cd", URL: "https://example.com/a"}, link)
}

func TestClient_CreateLink_Invalid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_url","message":"Invalid URL"}`))
	})

	_, err := c.CreateLink(context.Background(), "nope")
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Equal(t, "invalid_url", re.Code)
	assert.Equal(t, "Invalid URL", re.Message)
	assert.Contains(t, err.Error(), "400 invalid_url")
}

func TestClient_GetLinkInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/info/Ab12Cd" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","message":"Link not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":"Ab12Cd","url":"https://example.com/a","created_at":1700000000}`))
	})

	link, err := c.GetLinkInfo(context.Background(), "Ab12Cd")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), link.CreatedAt)

	_, err = c.GetLinkInfo(context.Background(), "zzzzzz")
	assert.True(t, IsNotFound(err))
}

func TestClient_Redirect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Ab12Cd":
			http.Redirect(w, r, "https://example.com/a", http.StatusFound)
		case "/bare00":
			w.WriteHeader(http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	target, err := c.Redirect(context.Background(), "Ab12Cd")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", target)

	_, err = c.Redirect(context.Background(), "zzzzzz")
	assert.True(t, IsNotFound(err))

	target, err = c.Redirect(context.Background(), "bare00")
	assert.ErrorIs(t, err, ErrNoLocation)
	assert.Empty(t, target)
}

func TestClient_DeleteLink(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Invalid bearer token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Link deleted"}`))
	})

	require.NoError(t, c.DeleteLink(context.Background(), "Ab12Cd", "tok"))

	err := c.DeleteLink(context.Background(), "Ab12Cd", "wrong")
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusUnauthorized, re.StatusCode)
	assert.Equal(t, "Invalid bearer token", re.Message)
}

func TestResponseError_NoBody(t *testing.T) {
	err := &ResponseError{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "shortlink: 502: Bad Gateway", err.Error())
}
