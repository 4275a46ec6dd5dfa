package results

import "errors"

// Sentinel errors for the results service layer.
var (
	ErrNotFound     = errors.New("result not found")
	ErrNoResults    = errors.New("no results stored")
	ErrInvalidOrder = errors.New("order must be asc or desc")
)
