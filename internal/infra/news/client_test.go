package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

func TestFetchTopHeadlines(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles":[
			{"title":"First","url":"https://example.com/1","source":"example","language":"en","published_at":"2026-08-29T06:00:00Z"},
			{"title":"Second","url":"https://example.com/2","source":"example","language":"en","published_at":"2026-08-29T05:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret", PageSize: 5})

	headlines, err := c.FetchTopHeadlines(context.Background(), domain.EditionWorld)
	require.NoError(t, err)

	require.Len(t, headlines, 2)
	assert.Equal(t, "First", headlines[0].Title)
	assert.Equal(t, "https://example.com/2", headlines[1].URL)
	assert.Equal(t, time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC), headlines[0].PublishedAt)

	require.NotNil(t, gotReq)
	assert.Equal(t, "/v1/headlines", gotReq.URL.Path)
	assert.Equal(t, "world", gotReq.URL.Query().Get("edition"))
	assert.Equal(t, "5", gotReq.URL.Query().Get("limit"))
	assert.Equal(t, "secret", gotReq.Header.Get("X-Api-Key"))
}

func TestFetchTopHeadlines_NoAPIKeyHeaderWhenUnset(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{"articles":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchTopHeadlines(context.Background(), domain.EditionJapan)
	require.NoError(t, err)
	assert.Empty(t, gotKey)
}

func TestFetchTopHeadlines_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchTopHeadlines(context.Background(), domain.EditionWorld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "120")
}

func TestFetchTopHeadlines_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchTopHeadlines(context.Background(), domain.EditionWorld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 502")
}

func TestFetchTopHeadlines_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles": not json`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchTopHeadlines(context.Background(), domain.EditionWorld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestFetchTopHeadlines_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchTopHeadlines(ctx, domain.EditionWorld)
	require.Error(t, err)
}
