package adaptor

import (
	"encoding/json"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
)

// DecoderFactory opens filePath for Decoder
type DecoderFactory func(filePath string) (Decoder, error)

// Decoder reads models.CorpusRow written by Encoder. Decode returns io.EOF at the end.
type Decoder interface {
	Decode() (*models.CorpusRow, error)
	Close() error
}

type parquetDecoder struct {
	fr   source.ParquetFile
	pr   *reader.ParquetReader
	num  int
	read int
}

// NewParquetDecoder opens parquet file of models.CorpusRow
func NewParquetDecoder(filePath string) (Decoder, error) {
	fr, err := local.NewLocalFileReader(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open")
	}

	pr, err := reader.NewParquetReader(fr, new(models.CorpusRow), 1)
	if err != nil {
		fr.Close()
		return nil, errors.Wrap(err, "Failed to create parquet reader")
	}

	return &parquetDecoder{fr: fr, pr: pr, num: int(pr.GetNumRows())}, nil
}

func (x *parquetDecoder) Decode() (*models.CorpusRow, error) {
	if x.read >= x.num {
		return nil, io.EOF
	}

	rows := make([]models.CorpusRow, 1)
	if err := x.pr.Read(&rows); err != nil {
		return nil, errors.Wrap(err, "Failed to read parquet row")
	}
	x.read++
	return &rows[0], nil
}

func (x *parquetDecoder) Close() error {
	x.pr.ReadStop()
	return x.fr.Close()
}

type gzipSource struct {
	fd *os.File
	gr *gzip.Reader
}

func openGzipFile(filePath string) (*gzipSource, error) {
	fd, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %s", filePath)
	}
	gr, err := gzip.NewReader(fd)
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "Failed to open gzip stream %s", filePath)
	}
	return &gzipSource{fd: fd, gr: gr}, nil
}

func (x *gzipSource) Close() error {
	x.gr.Close()
	return x.fd.Close()
}

type msgpackDecoder struct {
	*gzipSource
	dec *msgpack.Decoder
}

// NewMsgpackDecoder opens gzip compressed msgpack stream
func NewMsgpackDecoder(filePath string) (Decoder, error) {
	src, err := openGzipFile(filePath)
	if err != nil {
		return nil, err
	}
	return &msgpackDecoder{gzipSource: src, dec: msgpack.NewDecoder(src.gr)}, nil
}

func (x *msgpackDecoder) Decode() (*models.CorpusRow, error) {
	var row models.CorpusRow
	if err := x.dec.Decode(&row); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "Failed to decode msgpack row")
	}
	return &row, nil
}

type jsonlDecoder struct {
	*gzipSource
	dec *json.Decoder
}

// NewJSONLDecoder opens gzip compressed JSON lines
func NewJSONLDecoder(filePath string) (Decoder, error) {
	src, err := openGzipFile(filePath)
	if err != nil {
		return nil, err
	}
	return &jsonlDecoder{gzipSource: src, dec: json.NewDecoder(src.gr)}, nil
}

func (x *jsonlDecoder) Decode() (*models.CorpusRow, error) {
	var row models.CorpusRow
	if err := x.dec.Decode(&row); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "Failed to decode JSON row")
	}
	return &row, nil
}
