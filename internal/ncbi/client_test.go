package ncbi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
)

func init() {
	RetryBaseWait = time.Millisecond
}

func TestNewBaseClient_Defaults(t *testing.T) {
	c := NewBaseClient()
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, DefaultTool, c.Tool)
	assert.Equal(t, DefaultEmail, c.Email)
	assert.Equal(t, DefaultMaxResponseBytes, c.MaxBytes)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
	assert.NotNil(t, c.Limiter)
	assert.NotNil(t, c.Logger)
}

func TestNewBaseClient_WithOptions(t *testing.T) {
	c := NewBaseClient(
		WithBaseURL("http://localhost:9999"),
		WithAPIKey("test-key-123"),
		WithTool("my-tool"),
		WithEmail("test@example.com"),
		WithMaxResponseBytes(1024),
		WithTimeout(5*time.Second),
	)
	assert.Equal(t, "http://localhost:9999", c.BaseURL)
	assert.Equal(t, "test-key-123", c.APIKey)
	assert.Equal(t, "my-tool", c.Tool)
	assert.Equal(t, "test@example.com", c.Email)
	assert.Equal(t, int64(1024), c.MaxBytes)
	assert.Equal(t, 5*time.Second, c.HTTPClient.Timeout)
}

func TestDoGet_CommonParams(t *testing.T) {
	var received url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.URL.Query()
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	c := NewBaseClient(
		WithBaseURL(srv.URL),
		WithAPIKey("my-api-key"),
		WithTool("pharma-papers"),
		WithEmail("user@example.com"),
	)

	_, err := c.DoGet(context.Background(), "esearch.fcgi", url.Values{"db": {"pubmed"}})
	require.NoError(t, err)

	assert.Equal(t, "my-api-key", received.Get("api_key"))
	assert.Equal(t, "pharma-papers", received.Get("tool"))
	assert.Equal(t, "user@example.com", received.Get("email"))
	assert.Equal(t, "pubmed", received.Get("db"))
}

func TestDoGet_NoAPIKeyParamWhenUnset(t *testing.T) {
	var received url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.URL.Query()
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL))
	_, err := c.DoGet(context.Background(), "esearch.fcgi", nil)
	require.NoError(t, err)
	assert.False(t, received.Has("api_key"))
}

func TestDoPost_FormBody(t *testing.T) {
	var method, contentType string
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Write([]byte(`<PubmedArticleSet/>`))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL), WithAPIKey("k"))
	body, err := c.DoPost(context.Background(), "efetch.fcgi", url.Values{"id": {"1,2,3"}})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "1,2,3", form.Get("id"))
	assert.Equal(t, "k", form.Get("api_key"))
	assert.Equal(t, "<PubmedArticleSet/>", string(body))
}

func TestDoGet_RateLimitSequential(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rate limit test in short mode")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL)) // 3 req/sec without a key

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, err := c.DoGet(context.Background(), "test.fcgi", nil)
		require.NoError(t, err, "request %d", i)
	}

	// Three limiter intervals of ~333ms.
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestDoGet_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("X", 2048)))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL), WithAPIKey("test"), WithMaxResponseBytes(1024))

	_, err := c.DoGet(context.Background(), "test.fcgi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum size")
	assert.True(t, apperr.Is(err, apperr.ErrRetrieval))
}

func TestDoGet_ResponseWithinLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("small response"))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL), WithAPIKey("test"), WithMaxResponseBytes(1024))

	body, err := c.DoGet(context.Background(), "test.fcgi", nil)
	require.NoError(t, err)
	assert.Equal(t, "small response", string(body))
}

func TestDoGet_Unreachable(t *testing.T) {
	c := NewBaseClient(WithBaseURL("http://127.0.0.1:1"), WithAPIKey("test"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DoGet(ctx, "test.fcgi", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrRetrieval))
}

func TestDoGet_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	_, err := c.DoGet(context.Background(), "test.fcgi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.True(t, apperr.Is(err, apperr.ErrRetrieval))
}

func TestDoGet_HTTP429ExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	_, err := c.DoGet(context.Background(), "test.fcgi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(maxRetries+1), atomic.LoadInt32(&calls))
}

func TestDoGet_HTTP429ThenOK(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL), WithAPIKey("test"))
	body, err := c.DoGet(context.Background(), "test.fcgi", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoGet_URLJoinPath(t *testing.T) {
	var receivedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.Write([]byte(`OK`))
	}))
	defer srv.Close()

	c := NewBaseClient(WithBaseURL(srv.URL+"/"), WithAPIKey("test"))
	_, err := c.DoGet(context.Background(), "esearch.fcgi", nil)
	require.NoError(t, err)
	assert.Equal(t, "/esearch.fcgi", receivedPath)
}

func TestRetryAfterDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"0", 0},
		{"-2", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, retryAfterDuration(tt.in))
		})
	}
}
