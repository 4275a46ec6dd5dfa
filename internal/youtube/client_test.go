package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "statistics,snippet", r.URL.Query().Get("part"))
		assert.Equal(t, "aaaaaaaaaaa,bbbbbbbbbbb", r.URL.Query().Get("id"))
		assert.Equal(t, "k-123", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"aaaaaaaaaaa","statistics":{"viewCount":"1000","likeCount":"50","commentCount":"5"},
			 "snippet":{"channelTitle":"Chan A","publishedAt":"2024-02-03T04:05:06Z"}},
			{"id":"bbbbbbbbbbb","statistics":{"viewCount":"10"},"snippet":{}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	stats, err := c.FetchStats(context.Background(), []string{"aaaaaaaaaaa", "bbbbbbbbbbb"}, "k-123")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	a := stats["aaaaaaaaaaa"]
	assert.Equal(t, int64(1000), a.Views)
	assert.Equal(t, int64(50), a.Likes)
	assert.Equal(t, int64(5), a.Comments)
	assert.Equal(t, "Chan A", a.Creator)
	assert.Equal(t, "2024-02-03T04:05:06Z", a.PostedAt)

	b := stats["bbbbbbbbbbb"]
	assert.Equal(t, int64(10), b.Views)
	assert.Zero(t, b.Likes)
	assert.Empty(t, b.Creator)
}

func TestFetchStats_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota."}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FetchStats(context.Background(), []string{"aaaaaaaaaaa"}, "secret-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "exceeded your quota")
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestFetchStats_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: base})
	_, err := c.FetchStats(context.Background(), []string{"aaaaaaaaaaa"}, "secret-key")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestFetchStats_Validation(t *testing.T) {
	c := NewClient(Config{})

	_, err := c.FetchStats(context.Background(), []string{"x"}, "")
	assert.True(t, errors.Is(err, ErrMissingAPIKey))

	stats, err := c.FetchStats(context.Background(), nil, "key")
	require.NoError(t, err)
	assert.Empty(t, stats)

	ids := strings.Split(strings.Repeat("x,", MaxBatchSize+1), ",")[:MaxBatchSize+1]
	_, err = c.FetchStats(context.Background(), ids, "key")
	assert.Error(t, err)
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abcdefghijk", "abcdefghijk", true},
		{"https://www.youtube.com/embed/A_b-C_d-E_f", "A_b-C_d-E_f", true},
		{"https://youtube.com/videos/ZZZZZZZZZZZ", "ZZZZZZZZZZZ", true},
		{"https://youtu.be/short", "", false},
		{"https://www.youtube.com/@channel", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
