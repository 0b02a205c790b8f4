package service

import (
	"github.com/m-mizutani/pmcoa/internal"
	"github.com/pkg/errors"
)

var logger = internal.Logger

var (
	// ErrNoDataDir means base directory of the corpus is not given.
	ErrNoDataDir = errors.New("Data directory is required")
	// ErrFileCountMismatch means numbers of archives and manifests differ in a subset/partition.
	ErrFileCountMismatch = errors.New("Number of archives and manifests is mismatched")
	// ErrEntryCountMismatch means numbers of archive entries and manifest rows differ.
	ErrEntryCountMismatch = errors.New("Number of archive entries and manifest rows is mismatched")
	// ErrRowNotFound means no manifest row has the archive entry name in keyed pairing.
	ErrRowNotFound = errors.New("Manifest row is not found for archive entry")
)
