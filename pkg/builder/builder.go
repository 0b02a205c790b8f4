package builder

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/m-mizutani/pmcoa/internal"
	"github.com/m-mizutani/pmcoa/internal/filter"
	"github.com/m-mizutani/pmcoa/internal/service"
	"github.com/m-mizutani/pmcoa/pkg/handler"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = handler.Logger

// Result is summary of a build run
type Result struct {
	RunID string
	// Records is number of records read from the corpus
	Records int64
	// Written is number of records written to files. It differs from Records
	// only if a filter is given.
	Written int64
	Files   []*service.DumpFile
	Stats   []service.GroupStats
	// Uploaded has S3 objects of Files if S3 destination is given
	Uploaded []models.S3Object
	// Profile is elapsed time of build phases
	Profile []internal.ProfileResult
}

// Build phases measured in Result.Profile
const (
	PhaseLoadIndex = "load_index"
	PhaseScan      = "scan"
	PhaseFilter    = "filter"
	PhaseDump      = "dump"
	PhaseUpload    = "upload"
)

// Build scans whole corpus in args.DataDir and writes records to args.OutputDir.
func Build(args handler.Arguments) (*Result, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}

	format, err := args.OutputFormat()
	if err != nil {
		return nil, err
	}
	pairing, err := args.PairingMode()
	if err != nil {
		return nil, err
	}
	subsets, err := args.SelectedSubsets()
	if err != nil {
		return nil, err
	}
	dst, err := args.S3Destination()
	if err != nil {
		return nil, err
	}

	var recordFilter *filter.Filter
	if args.Filter != "" {
		if recordFilter, err = filter.New(args.Filter); err != nil {
			return nil, err
		}
	}

	outDir := args.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "Fail to create output directory: %s", outDir)
	}

	prof := internal.NewProfile()

	var index models.IDIndex
	if err := prof.Measure(PhaseLoadIndex, func() (err error) {
		index, err = service.LoadIDIndex(filepath.Join(args.DataDir, service.PMCIDsFileName))
		return
	}); err != nil {
		return nil, err
	}

	iter, err := service.NewCorpusIterator(args.DataDir, index, service.CorpusOptions{
		Subsets: subsets,
		Pairing: pairing,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	result := &Result{RunID: uuid.New().String()}
	dumper := service.NewDumpService(outDir, args.OutputPrefix(), result.RunID, format)
	dumper.SizeLimit = args.DumpSizeLimit()

	logger.WithFields(logrus.Fields{
		"runID":   result.RunID,
		"dataDir": args.DataDir,
		"outDir":  outDir,
		"format":  format.Name,
	}).Info("Start building corpus")

	if err := dumpRecords(iter, dumper, recordFilter, prof, result); err != nil {
		if cerr := dumper.Close(); cerr != nil {
			logger.WithError(cerr).Error("Fail to close dump file")
		}
		return nil, err
	}
	if err := dumper.Close(); err != nil {
		return nil, err
	}

	result.Records = iter.Count()
	result.Files = dumper.Files()
	result.Stats = iter.Stats()

	if dst != nil {
		if err := prof.Measure(PhaseUpload, func() (err error) {
			result.Uploaded, err = uploadFiles(args, result.Files, *dst)
			return
		}); err != nil {
			return nil, err
		}
	}
	result.Profile = prof.Results(false)

	logger.WithFields(logrus.Fields{
		"runID":   result.RunID,
		"records": result.Records,
		"written": result.Written,
		"files":   len(result.Files),
	}).Info("Done building corpus")

	return result, nil
}

func dumpRecords(iter *service.CorpusIterator, dumper *service.DumpService, f *filter.Filter, prof *internal.Profile, result *Result) error {
	for {
		var q *models.IndexedRecord
		if err := prof.Measure(PhaseScan, func() (err error) {
			q, err = iter.Next()
			return
		}); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if f != nil {
			matched := false
			if err := prof.Measure(PhaseFilter, func() (err error) {
				row := models.NewCorpusRow(q)
				matched, err = f.Match(&row)
				return
			}); err != nil {
				return err
			}
			if !matched {
				continue
			}
		}

		if err := prof.Measure(PhaseDump, func() error { return dumper.Dump(q) }); err != nil {
			return err
		}
		result.Written++
	}
}

func uploadFiles(args handler.Arguments, files []*service.DumpFile, dst models.S3Object) ([]models.S3Object, error) {
	s3Service := args.S3Service()

	var uploaded []models.S3Object
	for _, f := range files {
		obj := models.NewS3Object(dst.Region, dst.Bucket, dst.Key)
		obj.AppendKey(filepath.Base(f.Path))

		if err := s3Service.UploadFileToS3(f.Path, obj); err != nil {
			return nil, err
		}
		logger.WithField("dst", obj.Encode()).Info("Uploaded corpus file")
		uploaded = append(uploaded, obj)
	}

	return uploaded, nil
}
