package repository

import "github.com/cockroachdb/errors"

// Sentinel kinds for repository errors.
var (
	ErrLoad = errors.New("catalog load failed")
)
