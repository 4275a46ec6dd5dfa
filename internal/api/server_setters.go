package api

// SetLockFactory enables duplicate-upload rejection.
func (h *Handlers) SetLockFactory(f LockFactory) {
	h.locks = f
}

// SetArchiver enables raw-upload archiving.
func (h *Handlers) SetArchiver(a Archiver) {
	h.archive = a
}

// SetDefaultYouTubeKey sets the key used when a fetch request carries none.
func (h *Handlers) SetDefaultYouTubeKey(key string) {
	h.youtubeAPIKey = key
}

// SetMaxUploadBytes sets the multipart upload limit.
func (h *Handlers) SetMaxUploadBytes(n int64) {
	if n > 0 {
		h.maxUploadBytes = n
	}
}
