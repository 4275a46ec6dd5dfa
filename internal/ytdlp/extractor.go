// Package ytdlp retrieves post metadata by running the yt-dlp command line
// tool in simulate mode, so nothing is downloaded. It is the fetch path for
// platforms without a batch API.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
	"golang.org/x/time/rate"
)

// DefaultRetries is the retry count used when Config.Retries is zero.
const DefaultRetries = 2

// DefaultUserAgent is sent with every extractor request.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// Config configures the extractor.
type Config struct {
	// Binary is the yt-dlp executable name or path.
	Binary        string
	SocketTimeout time.Duration
	// Retries is passed to --retries. Zero selects DefaultRetries and a
	// negative value disables retrying.
	Retries       int
	UserAgent     string
	// InstagramSessionID, when set, is sent as a sessionid cookie on
	// Instagram requests.
	InstagramSessionID string
	// Timeout bounds one whole invocation including retries.
	Timeout time.Duration
	// RequestsPerSecond paces invocations; zero means unpaced.
	RequestsPerSecond float64
}

// runFunc executes a command and returns its stdout and stderr.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Extractor fetches metrics for one post at a time.
type Extractor struct {
	cfg     Config
	run     runFunc
	limiter *rate.Limiter
}

// New creates an Extractor, filling zero config values with defaults:
// binary "yt-dlp", 10s socket timeout, 2 retries, desktop Chrome user agent,
// 60s invocation timeout.
func New(cfg Config) *Extractor {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = 10 * time.Second
	}
	switch {
	case cfg.Retries == 0:
		cfg.Retries = DefaultRetries
	case cfg.Retries < 0:
		cfg.Retries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	e := &Extractor{cfg: cfg, run: execRun}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e
}

// Args builds the yt-dlp argument list for a post URL.
func (e *Extractor) Args(platform domain.Platform, url string) []string {
	args := []string{
		"--dump-json",
		"--skip-download",
		"--simulate",
		"--no-playlist",
		"--no-check-certificates",
		"--quiet",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(int(e.cfg.SocketTimeout.Seconds())),
		"--retries", strconv.Itoa(e.cfg.Retries),
		"--user-agent", e.cfg.UserAgent,
	}
	if platform == domain.PlatformInstagram && e.cfg.InstagramSessionID != "" {
		args = append(args, "--add-header", "Cookie:sessionid="+e.cfg.InstagramSessionID+";")
	}
	// "--" keeps URLs that start with "-" from being read as options.
	return append(args, "--", url)
}

// Fetch runs the extractor for one post and parses its metadata.
func (e *Extractor) Fetch(ctx context.Context, platform domain.Platform, url string) (domain.MetricStats, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return domain.MetricStats{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, err := e.run(ctx, e.cfg.Binary, e.Args(platform, url)...)
	if err != nil {
		logger.Debug("ytdlp: extraction failed", "platform", platform, "url", url,
			"elapsed", time.Since(start).Round(time.Millisecond))
		return domain.MetricStats{}, commandError(ctx, err, stderr)
	}
	return ParseMetadata(stdout)
}

// commandError turns a failed invocation into a short message, preferring
// yt-dlp's own last ERROR line.
func commandError(ctx context.Context, err error, stderr []byte) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("extractor timed out: %w", ctx.Err())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return fmt.Errorf("extractor unavailable: %w", execErr.Err)
	}
	if msg := lastLine(stderr); msg != "" {
		return errors.New(strings.TrimPrefix(msg, "ERROR: "))
	}
	return fmt.Errorf("extractor failed: %w", err)
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
