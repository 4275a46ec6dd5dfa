package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/pkg/httputil"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
)

const (
	msgNoFile       = "please upload a file"
	msgUnreadable   = "could not read uploaded file"
	msgTooLarge     = "uploaded file is too large"
	msgInProgress   = "this file is already being processed"
	uploadLockSpace = "kol-metrics:upload:"
)

type fetchResponse struct {
	Status string       `json:"status"`
	RunID  string       `json:"run_id"`
	Saved  int          `json:"saved"`
	Errors []string     `json:"errors"`
	Items  []resultItem `json:"items"`
}

// HandleFetch runs the pipeline on an uploaded spreadsheet and stores the
// results.
//
//	POST /fetch  multipart: file, youtube_api_key (optional)
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			httputil.Error(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		httputil.BadRequest(w, msgNoFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		httputil.BadRequest(w, msgNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.BadRequest(w, msgUnreadable)
		return
	}

	apiKey := strings.TrimSpace(r.FormValue("youtube_api_key"))
	if apiKey == "" {
		apiKey = h.youtubeAPIKey
	}

	if h.locks != nil {
		sum := sha256.Sum256(data)
		lock := h.locks.Lock(uploadLockSpace + hex.EncodeToString(sum[:]))
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			logger.Warn("api: upload lock unavailable, continuing unlocked", "error", err)
		} else if !acquired {
			httputil.Conflict(w, msgInProgress)
			return
		} else {
			defer func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := lock.Release(releaseCtx); err != nil {
					logger.Warn("api: upload lock release failed", "error", err)
				}
			}()
		}
	}

	out, err := h.pipeline.ProcessFile(ctx, data, header.Filename, apiKey)
	if err != nil {
		if domain.IsInputError(err) {
			httputil.BadRequest(w, err.Error())
			return
		}
		logger.Warn("api: upload rejected", "file", header.Filename, "error", err)
		httputil.BadRequest(w, msgUnreadable)
		return
	}

	stored, err := h.results.Save(ctx, out.Results)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	if h.archive != nil {
		if _, err := h.archive.Store(ctx, out.RunID, header.Filename, data); err != nil {
			logger.Warn("api: upload archive failed", "run_id", out.RunID, "error", err)
		}
	}

	httputil.OK(w, fetchResponse{
		Status: "success",
		RunID:  out.RunID,
		Saved:  len(stored),
		Errors: out.Errors,
		Items:  toItems(stored),
	})
}
