package service

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/internal/transform"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PairingMode decides how archive entries are matched with manifest rows.
type PairingMode string

const (
	// PairingPositional matches i-th entry with i-th row
	PairingPositional PairingMode = "positional"
	// PairingKeyed matches entry name with "Article File" column
	PairingKeyed PairingMode = "keyed"
)

// ParsePairingMode converts string to PairingMode. Empty string is PairingPositional.
func ParsePairingMode(v string) (PairingMode, error) {
	switch PairingMode(v) {
	case "", PairingPositional:
		return PairingPositional, nil
	case PairingKeyed:
		return PairingKeyed, nil
	default:
		return "", fmt.Errorf("Invalid pairing mode, must be %s or %s: %s", PairingPositional, PairingKeyed, v)
	}
}

// ScanStats is counters of an archive scan
type ScanStats struct {
	Records    int64
	UTF8       int64
	Latin1     int64
	NotInIndex int64
}

func (x *ScanStats) add(s ScanStats) {
	x.Records += s.Records
	x.UTF8 += s.UTF8
	x.Latin1 += s.Latin1
	x.NotInIndex += s.NotInIndex
}

// ScannerOptions configures ArchiveScanner
type ScannerOptions struct {
	// Subset is set to OASubset of all records
	Subset  string
	Pairing PairingMode
}

// ArchiveScanner reads an archive and its manifest in lockstep and produces
// ArticleRecord one by one in archive order.
type ArchiveScanner struct {
	archivePath  string
	manifestPath string
	index        models.IDIndex
	opts         ScannerOptions

	rows    []*models.ManifestRow
	byFile  map[string]*models.ManifestRow
	archive adaptor.ArchiveReader
	seq     int
	stats   ScanStats
}

// NewArchiveScanner loads the manifest, verifies that entry count of the archive
// equals row count, and opens the archive for sequential read.
func NewArchiveScanner(archivePath, manifestPath string, index models.IDIndex, opts ScannerOptions) (*ArchiveScanner, error) {
	if opts.Pairing == "" {
		opts.Pairing = PairingPositional
	}

	rows, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	entryCount, err := adaptor.CountArchiveEntries(archivePath)
	if err != nil {
		return nil, err
	}
	if entryCount != len(rows) {
		logger.WithFields(logrus.Fields{
			"archive":  archivePath,
			"manifest": manifestPath,
			"entries":  entryCount,
			"rows":     len(rows),
		}).Error("Entry count mismatch")
		return nil, errors.Wrapf(ErrEntryCountMismatch, "%d entries in %s, %d rows in %s",
			entryCount, archivePath, len(rows), manifestPath)
	}

	scanner := &ArchiveScanner{
		archivePath:  archivePath,
		manifestPath: manifestPath,
		index:        index,
		opts:         opts,
		rows:         rows,
	}

	if opts.Pairing == PairingKeyed {
		scanner.byFile = make(map[string]*models.ManifestRow, len(rows))
		for i, row := range rows {
			if row.ArticleFile == "" {
				return nil, fmt.Errorf("Empty %q at row %d of %s, required for keyed pairing",
					manifestColumnFile, i+1, manifestPath)
			}
			scanner.byFile[normalizeEntryName(row.ArticleFile)] = row
		}
	}

	archive, err := adaptor.OpenArchive(archivePath)
	if err != nil {
		return nil, err
	}
	scanner.archive = archive

	logger.WithFields(logrus.Fields{
		"archive":  archivePath,
		"manifest": manifestPath,
		"entries":  entryCount,
		"pairing":  opts.Pairing,
	}).Debug("Open archive scanner")

	return scanner, nil
}

// Next returns next record. It returns io.EOF after the last entry.
func (x *ArchiveScanner) Next() (*models.ArticleRecord, error) {
	if x.archive == nil {
		return nil, io.EOF
	}

	entry, err := x.archive.Next()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, err
	}

	row, err := x.lookupRow(entry)
	if err != nil {
		return nil, err
	}
	x.seq++

	rec, found := transform.BuildRecord(row, entry.Body, x.index, x.opts.Subset)

	x.stats.Records++
	switch rec.DecodedAs {
	case transform.SchemeUTF8:
		x.stats.UTF8++
	case transform.SchemeLatin1:
		x.stats.Latin1++
		logger.WithFields(logrus.Fields{
			"archive": x.archivePath,
			"entry":   entry.Name,
		}).Debug("Decoded as latin-1")
	}
	if !found {
		x.stats.NotInIndex++
	}

	return rec, nil
}

func (x *ArchiveScanner) lookupRow(entry *adaptor.ArchiveEntry) (*models.ManifestRow, error) {
	switch x.opts.Pairing {
	case PairingKeyed:
		row, ok := x.byFile[normalizeEntryName(entry.Name)]
		if !ok {
			return nil, errors.Wrapf(ErrRowNotFound, "%s in %s (manifest: %s)", entry.Name, x.archivePath, x.manifestPath)
		}
		return row, nil

	default:
		// Archive may be modified after entries were counted.
		if x.seq >= len(x.rows) {
			return nil, errors.Wrapf(ErrEntryCountMismatch, "%s has more entries than %d rows of %s",
				x.archivePath, len(x.rows), x.manifestPath)
		}
		return x.rows[x.seq], nil
	}
}

// Stats returns counters of records emitted so far.
func (x *ArchiveScanner) Stats() ScanStats { return x.stats }

// Close releases the archive. Calling Close twice is allowed.
func (x *ArchiveScanner) Close() error {
	if x.archive == nil {
		return nil
	}

	logger.WithFields(logrus.Fields{
		"archive": x.archivePath,
		"records": x.stats.Records,
	}).Debug("Close archive scanner")

	err := x.archive.Close()
	x.archive = nil
	return err
}

func normalizeEntryName(name string) string {
	return strings.TrimPrefix(path.Clean(name), "./")
}
