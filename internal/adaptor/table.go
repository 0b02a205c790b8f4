package adaptor

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const utf8BOM = "\ufeff"

// TableReader reads CSV table with header row. gzip compressed file is also acceptable.
type TableReader struct {
	path    string
	fd      *os.File
	gr      *gzip.Reader
	cr      *csv.Reader
	header  []string
	columns map[string]int
	line    int
}

// TableRow is a row of table. Values can be looked up by column name.
type TableRow struct {
	Line    int
	values  []string
	columns map[string]int
}

// Get returns value of the column. Unknown column returns empty string.
func (x *TableRow) Get(column string) string {
	idx, ok := x.columns[column]
	if !ok || idx >= len(x.values) {
		return ""
	}
	return x.values[idx]
}

// OpenTable opens CSV file and reads header row.
func OpenTable(path string) (*TableReader, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open table: %s", path)
	}

	tbl := &TableReader{path: path, fd: fd, columns: map[string]int{}}
	br := bufio.NewReader(fd)

	compressed, err := isGzip(br)
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "Failed to read table: %s", path)
	}

	var r io.Reader = br
	if compressed {
		gr, err := gzip.NewReader(br)
		if err != nil {
			fd.Close()
			return nil, errors.Wrapf(err, "Failed to open gzip stream: %s", path)
		}
		tbl.gr = gr
		r = gr
	}

	tbl.cr = csv.NewReader(r)
	// Accept bare quotes and short rows. Missing cells are empty.
	tbl.cr.LazyQuotes = true
	tbl.cr.FieldsPerRecord = -1
	header, err := tbl.cr.Read()
	if err == io.EOF {
		tbl.Close()
		return nil, fmt.Errorf("Header row is not found in %s", path)
	} else if err != nil {
		tbl.Close()
		return nil, errors.Wrapf(err, "Failed to read header of %s", path)
	}
	tbl.line = 1

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	tbl.header = header
	for i, col := range header {
		tbl.columns[col] = i
	}

	return tbl, nil
}

// Header returns column names.
func (x *TableReader) Header() []string { return x.header }

// Require checks that all columns exist in header.
func (x *TableReader) Require(columns ...string) error {
	var missing []string
	for _, col := range columns {
		if _, ok := x.columns[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("Required column(s) not found in %s: %s", x.path, strings.Join(missing, ", "))
	}
	return nil
}

// Has returns true if the column exists.
func (x *TableReader) Has(column string) bool {
	_, ok := x.columns[column]
	return ok
}

// Read returns next row. It returns io.EOF at the end of table.
func (x *TableReader) Read() (*TableRow, error) {
	values, err := x.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Wrapf(err, "Failed to read table %s", x.path)
	}
	x.line++

	return &TableRow{Line: x.line, values: values, columns: x.columns}, nil
}

// Close releases file handle.
func (x *TableReader) Close() error {
	if x.fd == nil {
		return nil
	}
	if x.gr != nil {
		x.gr.Close()
	}
	err := x.fd.Close()
	x.fd = nil
	return err
}
