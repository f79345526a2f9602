package api

import "errors"

var (
	// ErrMissingUserID is returned when user_id is missing from context.
	ErrMissingUserID = errors.New("missing user_id in context")
)
