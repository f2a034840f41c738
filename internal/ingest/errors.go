package ingest

import "errors"

var (
	// ErrNoHeader is returned for an export with no header line at all.
	ErrNoHeader = errors.New("file has no header row")

	ErrNotRegularFile = errors.New("not a regular file")
)
