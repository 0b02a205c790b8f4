package service

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	archiveSuffix  = ".tar.gz"
	manifestSuffix = ".filelist.csv"
)

// FilePair is an archive and its manifest
type FilePair struct {
	Archive  string
	Manifest string
}

// SubsetDir returns directory that has archives of the subset.
// Layout: {dataDir}/oa_bulk/{label}/txt
func SubsetDir(dataDir string, subset models.Subset) string {
	return filepath.Join(dataDir, "oa_bulk", subset.Label, "txt")
}

// globFiles returns files in dir whose name matches pattern. Only the file name is
// matched, so dir may contain glob meta characters. Missing dir has no file.
func globFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "Failed to read directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid file pattern %s", pattern)
		}
		if ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// DiscoverPairs finds archives and manifests of the partition kind in dir and pairs
// them in file name order.
func DiscoverPairs(dir string, kind models.PartitionKind) ([]FilePair, error) {
	marker := kind.FileMarker()

	archives, err := globFiles(dir, "*"+marker+"*"+archiveSuffix)
	if err != nil {
		return nil, err
	}
	manifests, err := globFiles(dir, "*"+marker+"*"+manifestSuffix)
	if err != nil {
		return nil, err
	}

	if len(archives) != len(manifests) {
		logger.WithFields(logrus.Fields{
			"dir":       dir,
			"partition": kind,
			"archives":  archives,
			"manifests": manifests,
		}).Error("File count mismatch")
		return nil, errors.Wrapf(ErrFileCountMismatch, "%d archives and %d manifests of %s in %s",
			len(archives), len(manifests), kind, dir)
	}

	pairs := make([]FilePair, len(archives))
	for i := range archives {
		pairs[i] = FilePair{Archive: archives[i], Manifest: manifests[i]}
	}
	return pairs, nil
}

// GroupStats is counters of a (subset, partition kind) group
type GroupStats struct {
	Subset    string
	Partition models.PartitionKind
	Archives  int
	ScanStats
}

// CorpusOptions configures CorpusIterator
type CorpusOptions struct {
	// Subsets to be scanned. models.Subsets is used if empty.
	Subsets []models.Subset
	Pairing PairingMode
}

type corpusGroup struct {
	subset models.Subset
	kind   models.PartitionKind
}

// CorpusIterator walks all subsets and partition kinds and assigns run-wide index
// to every record.
type CorpusIterator struct {
	dataDir string
	index   models.IDIndex
	opts    CorpusOptions

	groups   []corpusGroup
	groupPos int
	pairs    []FilePair
	pairPos  int
	scanner  *ArchiveScanner
	current  *GroupStats
	stats    []*GroupStats

	nextIndex int64
}

// NewCorpusIterator creates CorpusIterator. No file is opened until Next is called.
func NewCorpusIterator(dataDir string, index models.IDIndex, opts CorpusOptions) (*CorpusIterator, error) {
	if dataDir == "" {
		return nil, ErrNoDataDir
	}
	if len(opts.Subsets) == 0 {
		opts.Subsets = models.Subsets
	}

	var groups []corpusGroup
	for _, subset := range opts.Subsets {
		for _, kind := range models.PartitionKinds {
			groups = append(groups, corpusGroup{subset: subset, kind: kind})
		}
	}

	return &CorpusIterator{
		dataDir: dataDir,
		index:   index,
		opts:    opts,
		groups:  groups,
	}, nil
}

// Next returns next record with index. It returns io.EOF when all subsets and
// partition kinds are exhausted.
func (x *CorpusIterator) Next() (*models.IndexedRecord, error) {
	for {
		if x.scanner != nil {
			rec, err := x.scanner.Next()
			if err == nil {
				q := &models.IndexedRecord{Index: x.nextIndex, Record: rec}
				x.nextIndex++
				return q, nil
			}
			if err != io.EOF {
				return nil, err
			}

			if err := x.closeScanner(); err != nil {
				return nil, err
			}
			continue
		}

		if x.pairPos < len(x.pairs) {
			pair := x.pairs[x.pairPos]
			x.pairPos++

			scanner, err := NewArchiveScanner(pair.Archive, pair.Manifest, x.index, ScannerOptions{
				Subset:  x.current.Subset,
				Pairing: x.opts.Pairing,
			})
			if err != nil {
				return nil, err
			}
			x.scanner = scanner
			x.current.Archives++
			continue
		}

		if x.current != nil {
			x.logGroup()
		}

		if x.groupPos >= len(x.groups) {
			x.current = nil
			return nil, io.EOF
		}

		if err := x.enterGroup(x.groups[x.groupPos]); err != nil {
			return nil, err
		}
		x.groupPos++
	}
}

func (x *CorpusIterator) enterGroup(g corpusGroup) error {
	dir := SubsetDir(x.dataDir, g.subset)
	pairs, err := DiscoverPairs(dir, g.kind)
	if err != nil {
		return err
	}

	x.pairs = pairs
	x.pairPos = 0
	x.current = &GroupStats{Subset: g.subset.Label, Partition: g.kind}
	x.stats = append(x.stats, x.current)

	logger.WithFields(logrus.Fields{
		"subset":    g.subset.Label,
		"partition": g.kind,
		"archives":  len(pairs),
	}).Debug("Enter subset partition")
	return nil
}

func (x *CorpusIterator) logGroup() {
	logger.WithFields(logrus.Fields{
		"subset":    x.current.Subset,
		"partition": x.current.Partition,
		"archives":  x.current.Archives,
		"records":   x.current.Records,
		"latin1":    x.current.Latin1,
	}).Info("Done subset partition")
}

func (x *CorpusIterator) closeScanner() error {
	x.current.add(x.scanner.Stats())
	err := x.scanner.Close()
	x.scanner = nil
	if err != nil {
		return err
	}
	return nil
}

// Count returns number of records emitted so far.
func (x *CorpusIterator) Count() int64 { return x.nextIndex }

// Stats returns counters of groups entered so far. Records of an archive are
// counted when the archive is exhausted.
func (x *CorpusIterator) Stats() []GroupStats {
	stats := make([]GroupStats, len(x.stats))
	for i, s := range x.stats {
		stats[i] = *s
	}
	return stats
}

// Close releases an archive being read.
func (x *CorpusIterator) Close() error {
	if x.scanner == nil {
		return nil
	}
	return x.closeScanner()
}
