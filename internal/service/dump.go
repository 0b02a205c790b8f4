package service

import (
	"fmt"
	"path/filepath"

	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultDumpSizeLimit is default maximum data size of an output file.
// When hitting the size, dumper closes the file and opens another one.
const DefaultDumpSizeLimit = 128 * 1000 * 1000 // 128MB

// DumpFile is an output file written by DumpService
type DumpFile struct {
	Path     string
	Rows     int64
	DataSize int64

	encoder adaptor.Encoder
}

// DumpService writes records to local files of adaptor.OutputFormat.
type DumpService struct {
	SizeLimit int64

	outDir string
	prefix string
	runID  string
	format *adaptor.OutputFormat

	current *DumpFile
	files   []*DumpFile
}

// NewDumpService is constructor of DumpService. File name format is
// {prefix}-{runID}-{seq}.{ext}
func NewDumpService(outDir, prefix, runID string, format *adaptor.OutputFormat) *DumpService {
	return &DumpService{
		SizeLimit: DefaultDumpSizeLimit,
		outDir:    outDir,
		prefix:    prefix,
		runID:     runID,
		format:    format,
	}
}

func (x *DumpService) open() error {
	fname := fmt.Sprintf("%s-%s-%05d.%s", x.prefix, x.runID, len(x.files), x.format.Ext)
	filePath := filepath.Join(x.outDir, fname)

	enc, err := x.format.NewEncoder(filePath)
	if err != nil {
		return errors.Wrapf(err, "Fail to open dump file: %s", filePath)
	}

	x.current = &DumpFile{Path: filePath, encoder: enc}
	x.files = append(x.files, x.current)

	logger.WithFields(logrus.Fields{
		"path":   filePath,
		"format": x.format.Name,
	}).Debug("Open dump file")
	return nil
}

func (x *DumpService) closeCurrent() error {
	if x.current == nil {
		return nil
	}

	logger.WithFields(logrus.Fields{
		"path":     x.current.Path,
		"rows":     x.current.Rows,
		"dataSize": x.current.DataSize,
	}).Debug("Closing dump file")

	enc := x.current.encoder
	x.current.encoder = nil
	x.current = nil

	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "Fail to close dump file")
	}
	return nil
}

func (x *DumpService) refresh(dataSize int64) error {
	if x.current != nil && x.current.Rows > 0 && x.current.DataSize+dataSize > x.SizeLimit {
		if err := x.closeCurrent(); err != nil {
			return err
		}
	}

	if x.current == nil {
		if err := x.open(); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes a record. The first file is created on the first Dump.
func (x *DumpService) Dump(q *models.IndexedRecord) error {
	row := models.NewCorpusRow(q)
	dataSize := row.DataSize()

	if err := x.refresh(dataSize); err != nil {
		return err
	}

	if err := x.current.encoder.Encode(row); err != nil {
		return errors.Wrapf(err, "Fail to write record %d (%s)", q.Index, q.Record.AccessionID)
	}
	x.current.Rows++
	x.current.DataSize += dataSize

	return nil
}

// Close closes the current file.
func (x *DumpService) Close() error {
	return x.closeCurrent()
}

// Files returns all files created by the service.
func (x *DumpService) Files() []*DumpFile { return x.files }
