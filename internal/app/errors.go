package service

import (
	"github.com/cockroachdb/errors"
)

// Sentinel error kinds for the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoCatalog  = errors.New("no catalog configured")
)
