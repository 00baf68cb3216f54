package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(c.Close)
	return c
}

func TestChat_TextOnlyOmitsImage(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err)

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &raw))
		_, _ = w.Write([]byte(`{"response":"Hi there"}`))
	})

	reply, err := c.Chat(context.Background(), ChatRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, map[string]any{"message": "Hello"}, raw)
}

func TestChat_WithImage(t *testing.T) {
	var got ChatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"Caption: sunset"}`))
	})

	req := ChatRequest{Message: "describe", Image: "data:image/png;base64,aGk="}
	_, err := c.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestChat_HTTPErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantMsg    string
	}{
		{"string detail", 500, `{"detail":"model unavailable"}`, "model unavailable", "model unavailable"},
		{"structured detail", 422, `{"detail":[{"loc":["body","message"]}]}`, `[{"loc":["body","message"]}]`, `[{"loc":["body","message"]}]`},
		{"empty detail", 500, `{"detail":""}`, "", "HTTP error! status: 500"},
		{"null detail", 503, `{"detail":null}`, "", "HTTP error! status: 503"},
		{"no detail", 404, `{"error":"nope"}`, "", "HTTP error! status: 404"},
		{"not json", 502, `<html>bad gateway</html>`, "", "HTTP error! status: 502"},
		{"empty body", 500, ``, "", "HTTP error! status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Chat(context.Background(), ChatRequest{Message: "x"})

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantDetail, httpErr.Detail)
			assert.Equal(t, tt.wantMsg, httpErr.Error())
		})
	}
}

func TestChat_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Chat(context.Background(), ChatRequest{Message: "x"})
	assert.Error(t, err)
}

func TestChat_MissingResponseField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"wrong key"}`))
	})

	_, err := c.Chat(context.Background(), ChatRequest{Message: "x"})
	assert.ErrorIs(t, err, ErrMissingResponse)
}

func TestChat_EmptyResponseIsValid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	})

	reply, err := c.Chat(context.Background(), ChatRequest{Message: "x"})
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestChat_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	defer c.Close()

	_, err := c.Chat(context.Background(), ChatRequest{Message: "x"})
	require.Error(t, err)

	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestChat_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Chat(ctx, ChatRequest{Message: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/", r.URL.Path)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		assert.NoError(t, c.Ping(context.Background()))
	})

	t.Run("non-2xx", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		err := c.Ping(context.Background())

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewClient(url)
		defer c.Close()
		assert.Error(t, c.Ping(context.Background()))
	})
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8000///")
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestWithTimeout_CopiesCallerClient(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("http://localhost:8000", WithHTTPClient(hc), WithTimeout(30*time.Second))

	assert.Zero(t, hc.Timeout, "caller's client must stay untouched")
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestWithHTTPClient_NilKeepsDefault(t *testing.T) {
	var c *Client
	require.NotPanics(t, func() {
		c = NewClient("http://localhost:8000", WithHTTPClient(nil), WithTimeout(time.Second))
	})
	require.NotNil(t, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
