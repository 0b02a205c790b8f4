package handler

import (
	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/internal/service"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Arguments has command line options and adaptors
type Arguments struct {
	// Global options
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	SentryDSN string `json:"-"`
	SentryEnv string `json:"sentry_env"`

	// Build options
	DataDir   string   `json:"data_dir"`
	OutputDir string   `json:"output_dir"`
	Format    string   `json:"format"`
	Prefix    string   `json:"prefix"`
	SizeLimit int64    `json:"size_limit"`
	Pairing   string   `json:"pairing"`
	Subsets   []string `json:"subsets"`
	Filter    string   `json:"filter"`
	S3Dst     string   `json:"s3_dst"`

	NewS3 adaptor.S3ClientFactory `json:"-"`
}

// Default values of Arguments
const (
	DefaultFormat = "parquet"
	DefaultPrefix = "pmcoa"
)

// Validate checks options before any file access.
func (x *Arguments) Validate() error {
	if x.DataDir == "" {
		return service.ErrNoDataDir
	}
	if x.SizeLimit < 0 {
		return errors.Errorf("Invalid size limit: %d", x.SizeLimit)
	}
	if _, err := x.OutputFormat(); err != nil {
		return err
	}
	if _, err := x.PairingMode(); err != nil {
		return err
	}
	if _, err := x.SelectedSubsets(); err != nil {
		return err
	}
	if _, err := x.S3Destination(); err != nil {
		return err
	}

	return nil
}

// OutputFormat returns adaptor.OutputFormat of Format. parquet is default.
func (x *Arguments) OutputFormat() (*adaptor.OutputFormat, error) {
	name := x.Format
	if name == "" {
		name = DefaultFormat
	}
	return adaptor.LookupFormat(name)
}

// PairingMode returns parsed Pairing
func (x *Arguments) PairingMode() (service.PairingMode, error) {
	return service.ParsePairingMode(x.Pairing)
}

// SelectedSubsets returns subsets to be scanned in fixed order of models.Subsets
// regardless of the order of Subsets. All subsets are returned if Subsets is empty.
func (x *Arguments) SelectedSubsets() ([]models.Subset, error) {
	if len(x.Subsets) == 0 {
		return models.Subsets, nil
	}

	selected := map[string]bool{}
	for _, name := range x.Subsets {
		s, err := models.LookupSubset(name)
		if err != nil {
			return nil, err
		}
		selected[s.Key] = true
	}

	var subsets []models.Subset
	for _, s := range models.Subsets {
		if selected[s.Key] {
			subsets = append(subsets, s)
		}
	}
	return subsets, nil
}

// S3Destination returns parsed S3Dst. nil is returned if S3Dst is empty.
func (x *Arguments) S3Destination() (*models.S3Object, error) {
	if x.S3Dst == "" {
		return nil, nil
	}

	dst, err := models.DecodeS3Object(x.S3Dst)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid S3 destination: %s", x.S3Dst)
	}
	return dst, nil
}

// DumpSizeLimit returns SizeLimit or default value
func (x *Arguments) DumpSizeLimit() int64 {
	if x.SizeLimit > 0 {
		return x.SizeLimit
	}
	return service.DefaultDumpSizeLimit
}

// OutputPrefix returns Prefix or default value
func (x *Arguments) OutputPrefix() string {
	if x.Prefix != "" {
		return x.Prefix
	}
	return DefaultPrefix
}

// LogFields returns options to be logged. SentryDSN is not included.
func (x *Arguments) LogFields() logrus.Fields {
	return logrus.Fields{
		"dataDir":   x.DataDir,
		"outputDir": x.OutputDir,
		"format":    x.Format,
		"prefix":    x.Prefix,
		"sizeLimit": x.SizeLimit,
		"pairing":   x.Pairing,
		"subsets":   x.Subsets,
		"filter":    x.Filter,
		"s3Dst":     x.S3Dst,
		"sentry":    x.SentryDSN != "",
		"sentryEnv": x.SentryEnv,
	}
}

// S3Service provides service.S3Service with S3 adaptor
func (x *Arguments) S3Service() *service.S3Service {
	return service.NewS3Service(x.newS3())
}

func (x *Arguments) newS3() adaptor.S3ClientFactory {
	if x.NewS3 != nil {
		return x.NewS3
	}
	return adaptor.NewS3Client
}
