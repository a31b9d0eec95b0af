package capabilities

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

func TestHTTPNetwork_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, []string{"a", "b"}, r.Header.Values("X-Multi"))
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer server.Close()

	n := NewHTTPNetwork()
	resp, err := n.Fetch(context.Background(), entities.HTTPRequest{
		Method:  "post",
		URL:     server.URL,
		Headers: entities.Multimap{"x-multi": {"a", "b"}},
		Body:    []byte("ping"),
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "text/plain", resp.Headers.Get("content-type"))
	_, lowered := resp.Headers["content-type"]
	assert.True(t, lowered)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(body))
}

func TestHTTPNetwork_BodyOutlivesContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-release
		_, _ = w.Write([]byte("late body"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	resp, err := NewHTTPNetwork().Fetch(ctx, entities.HTTPRequest{URL: server.URL})
	require.NoError(t, err)
	defer resp.Body.Close()

	cancel()
	close(release)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "late body", string(body))
}

func TestHTTPNetwork_CancelledBeforeHead(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPNetwork().Fetch(ctx, entities.HTTPRequest{URL: server.URL})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPNetwork_HeadTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(block)

	_, err := NewHTTPNetwork(WithHeadTimeout(50*time.Millisecond)).
		Fetch(context.Background(), entities.HTTPRequest{URL: server.URL})
	assert.ErrorContains(t, err, "no response head within")
}

func TestHTTPNetwork_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := NewHTTPNetwork(WithFollowRedirects(false)).
		Fetch(context.Background(), entities.HTTPRequest{URL: server.URL + "/start"})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/end", resp.Headers.Get("location"))
}

func TestHTTPNetwork_SSRFProtection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewHTTPNetwork(WithSSRFProtection(false)).
		Fetch(context.Background(), entities.HTTPRequest{URL: server.URL})
	assert.ErrorContains(t, err, "SSRF protection")

	resp, err := NewHTTPNetwork(WithSSRFProtection(true)).
		Fetch(context.Background(), entities.HTTPRequest{URL: server.URL})
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestHTTPNetwork_EmptyURL(t *testing.T) {
	_, err := NewHTTPNetwork().Fetch(context.Background(), entities.HTTPRequest{})
	assert.ErrorContains(t, err, "url is required")
}
