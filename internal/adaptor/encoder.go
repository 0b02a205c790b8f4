package adaptor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// EncoderFactory creates Encoder that writes to filePath.
type EncoderFactory func(filePath string) (Encoder, error)

// Encoder writes models.CorpusRow to a file.
type Encoder interface {
	Encode(row models.CorpusRow) error
	Close() error
}

// OutputFormat binds format name, file extension and codec constructors.
type OutputFormat struct {
	Name       string
	Ext        string
	NewEncoder EncoderFactory
	NewDecoder DecoderFactory
}

var (
	// FormatParquet writes SNAPPY compressed parquet file
	FormatParquet = &OutputFormat{Name: "parquet", Ext: "parquet", NewEncoder: NewParquetEncoder, NewDecoder: NewParquetDecoder}
	// FormatMsgpack writes gzip compressed msgpack stream
	FormatMsgpack = &OutputFormat{Name: "msgpack", Ext: "msg.gz", NewEncoder: NewMsgpackEncoder, NewDecoder: NewMsgpackDecoder}
	// FormatJSONL writes gzip compressed JSON lines
	FormatJSONL = &OutputFormat{Name: "jsonl", Ext: "jsonl.gz", NewEncoder: NewJSONLEncoder, NewDecoder: NewJSONLDecoder}

	outputFormats = []*OutputFormat{FormatParquet, FormatMsgpack, FormatJSONL}
)

// LookupFormat returns OutputFormat by name.
func LookupFormat(name string) (*OutputFormat, error) {
	for _, f := range outputFormats {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("Unsupported output format: %s", name)
}

// LookupFormatByPath returns OutputFormat by file extension.
func LookupFormatByPath(filePath string) (*OutputFormat, error) {
	for _, f := range outputFormats {
		if len(filePath) > len(f.Ext) && filePath[len(filePath)-len(f.Ext)-1:] == "."+f.Ext {
			return f, nil
		}
	}
	return nil, fmt.Errorf("Unknown file extension: %s", filePath)
}

const (
	// About parquet format: https://parquet.apache.org/documentation/latest/
	parquetRowGroupSize = 16 * 1024 * 1024 // 16M
)

type parquetEncoder struct {
	fw source.ParquetFile
	pw *writer.ParquetWriter
}

// NewParquetEncoder creates parquet writer of models.CorpusRow
func NewParquetEncoder(filePath string) (Encoder, error) {
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "Fail to create a parquet file")
	}

	pw, err := writer.NewParquetWriter(fw, new(models.CorpusRow), 4)
	if err != nil {
		fw.Close()
		return nil, errors.Wrap(err, "Fail to create parquet writer")
	}

	pw.RowGroupSize = parquetRowGroupSize
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	return &parquetEncoder{fw: fw, pw: pw}, nil
}

func (x *parquetEncoder) Encode(row models.CorpusRow) error {
	if err := x.pw.Write(row); err != nil {
		return errors.Wrap(err, "Parquet write error")
	}
	return nil
}

func (x *parquetEncoder) Close() error {
	defer x.fw.Close()

	if err := x.pw.WriteStop(); err != nil {
		return errors.Wrap(err, "Fail to WriteStop for CorpusRow")
	}
	return nil
}

// gzipFile is base of stream encoders
type gzipFile struct {
	fd *os.File
	gw *gzip.Writer
}

func createGzipFile(filePath string) (*gzipFile, error) {
	fd, err := os.Create(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to create %s", filePath)
	}
	return &gzipFile{fd: fd, gw: gzip.NewWriter(fd)}, nil
}

func (x *gzipFile) Close() error {
	if err := x.gw.Close(); err != nil {
		x.fd.Close()
		return errors.Wrap(err, "Fail to close gzip stream")
	}
	return x.fd.Close()
}

type msgpackGzipEncoder struct {
	*gzipFile
	enc *msgpack.Encoder
}

// NewMsgpackEncoder creates gzip compressed msgpack stream writer
func NewMsgpackEncoder(filePath string) (Encoder, error) {
	f, err := createGzipFile(filePath)
	if err != nil {
		return nil, err
	}
	return &msgpackGzipEncoder{gzipFile: f, enc: msgpack.NewEncoder(f.gw)}, nil
}

func (x *msgpackGzipEncoder) Encode(row models.CorpusRow) error { return x.enc.Encode(&row) }

type jsonlGzipEncoder struct {
	*gzipFile
	enc *json.Encoder
}

// NewJSONLEncoder creates gzip compressed JSON lines writer
func NewJSONLEncoder(filePath string) (Encoder, error) {
	f, err := createGzipFile(filePath)
	if err != nil {
		return nil, err
	}
	return &jsonlGzipEncoder{gzipFile: f, enc: json.NewEncoder(f.gw)}, nil
}

func (x *jsonlGzipEncoder) Encode(row models.CorpusRow) error { return x.enc.Encode(&row) }
