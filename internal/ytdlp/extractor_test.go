package ytdlp

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRun struct {
	stdout, stderr []byte
	err            error
	name           string
	args           []string
}

func (f *fakeRun) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name, f.args = name, args
	return f.stdout, f.stderr, f.err
}

func TestArgs(t *testing.T) {
	e := New(Config{InstagramSessionID: "sess-1"})

	ig := e.Args(domain.PlatformInstagram, "https://www.instagram.com/p/abc/")
	assert.Contains(t, ig, "--simulate")
	assert.Contains(t, ig, "--skip-download")
	assert.Contains(t, ig, "--no-playlist")
	assert.Contains(t, ig, "Cookie:sessionid=sess-1;")
	assert.Equal(t, []string{"--", "https://www.instagram.com/p/abc/"}, ig[len(ig)-2:])

	tt := e.Args(domain.PlatformTikTok, "https://www.tiktok.com/@a/video/1")
	assert.NotContains(t, tt, "Cookie:sessionid=sess-1;")

	idx := indexOf(tt, "--socket-timeout")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "10", tt[idx+1])
	idx = indexOf(tt, "--retries")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "2", tt[idx+1])
	idx = indexOf(tt, "--user-agent")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, DefaultUserAgent, tt[idx+1])
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestFetch(t *testing.T) {
	fr := &fakeRun{stdout: []byte(`{"view_count": 2000, "like_count": 150, "comment_count": 10, "uploader": "creator_x", "timestamp": 1704067200}` + "\n")}
	e := New(Config{Binary: "/opt/bin/yt-dlp", Retries: 2})
	e.run = fr.run

	stats, err := e.Fetch(context.Background(), domain.PlatformTikTok, "https://www.tiktok.com/@a/video/1")
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/yt-dlp", fr.name)
	assert.Equal(t, domain.MetricStats{
		Views:    2000,
		Likes:    150,
		Comments: 10,
		Creator:  "creator_x",
		PostedAt: "2024-01-01T00:00:00Z",
	}, stats)
}

func TestFetch_ErrorUsesStderr(t *testing.T) {
	fr := &fakeRun{
		stderr: []byte("WARNING: something\nERROR: [Instagram] abc: Requested content is not available\n"),
		err:    errors.New("exit status 1"),
	}
	e := New(Config{})
	e.run = fr.run

	_, err := e.Fetch(context.Background(), domain.PlatformInstagram, "https://www.instagram.com/p/abc/")
	require.Error(t, err)
	assert.Equal(t, "[Instagram] abc: Requested content is not available", err.Error())
}

func TestFetch_MissingBinary(t *testing.T) {
	fr := &fakeRun{err: &exec.Error{Name: "yt-dlp", Err: exec.ErrNotFound}}
	e := New(Config{})
	e.run = fr.run

	_, err := e.Fetch(context.Background(), domain.PlatformTikTok, "https://www.tiktok.com/@a/video/1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Contains(t, err.Error(), "extractor unavailable")
}

func TestFetch_RateLimitedContextCanceled(t *testing.T) {
	e := New(Config{RequestsPerSecond: 0.001})
	e.run = (&fakeRun{stdout: []byte(`{}`)}).run

	_, err := e.Fetch(context.Background(), domain.PlatformTikTok, "https://www.tiktok.com/@a/video/1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = e.Fetch(ctx, domain.PlatformTikTok, "https://www.tiktok.com/@a/video/2")
	assert.Error(t, err)
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name string
		json string
		want domain.MetricStats
	}{
		{
			name: "alternate field names",
			json: `{"views": 500, "likes": 20, "comments": 3, "channel": "chan"}`,
			want: domain.MetricStats{Views: 500, Likes: 20, Comments: 3, Creator: "chan"},
		},
		{
			name: "zero primary falls through",
			json: `{"view_count": 0, "views": 42, "like_count": null}`,
			want: domain.MetricStats{Views: 42},
		},
		{
			name: "upload date fallback",
			json: `{"upload_date": "20240315", "uploader": ""}`,
			want: domain.MetricStats{PostedAt: "2024-03-15T00:00:00Z"},
		},
		{
			name: "malformed upload date",
			json: `{"upload_date": "2024-03"}`,
			want: domain.MetricStats{},
		},
		{
			name: "float counts truncated",
			json: `{"view_count": 1234.0, "timestamp": 1700000000.5}`,
			want: domain.MetricStats{Views: 1234, PostedAt: "2023-11-14T22:13:20Z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMetadata_Invalid(t *testing.T) {
	_, err := ParseMetadata([]byte("not json"))
	assert.Error(t, err)
}

func TestNew_Retries(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want string
	}{
		{"zero selects default", 0, "2"},
		{"explicit count", 5, "5"},
		{"negative disables", -1, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := New(Config{Retries: tt.in}).Args(domain.PlatformTikTok, "https://www.tiktok.com/@a/video/1")
			idx := indexOf(args, "--retries")
			require.GreaterOrEqual(t, idx, 0)
			assert.Equal(t, tt.want, args[idx+1])
		})
	}
}
