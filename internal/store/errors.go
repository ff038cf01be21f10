package store

import "errors"

// ErrAlreadyQueued indicates an enqueue attempt for an episode already present
// in the session's queue.
var ErrAlreadyQueued = errors.New("episode already queued")
