package api

import (
	"context"
	"net/http"

	"github.com/ignite/kol-metrics/internal/pipeline"
	"github.com/ignite/kol-metrics/internal/pkg/distlock"
	"github.com/ignite/kol-metrics/internal/pkg/httputil"
	"github.com/ignite/kol-metrics/internal/service/results"
)

// DefaultMaxUploadBytes caps multipart uploads when the server config does
// not say otherwise.
const DefaultMaxUploadBytes = 20 << 20

// Processor runs the metrics pipeline over one uploaded file.
type Processor interface {
	ProcessFile(ctx context.Context, data []byte, filename, apiKey string) (*pipeline.Output, error)
}

// LockFactory hands out per-upload locks.
type LockFactory interface {
	Lock(key string) distlock.DistLock
}

// Archiver keeps a copy of raw uploads.
type Archiver interface {
	Store(ctx context.Context, runID, filename string, data []byte) (string, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	pipeline       Processor
	results        *results.Service
	locks          LockFactory
	archive        Archiver
	youtubeAPIKey  string
	maxUploadBytes int64
}

// NewHandlers creates a new Handlers instance
func NewHandlers(p Processor, svc *results.Service) *Handlers {
	return &Handlers{
		pipeline:       p,
		results:        svc,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// HealthCheck returns the service health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}
