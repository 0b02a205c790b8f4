package adaptor

import (
	"archive/tar"
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ArchiveEntry is a regular file in tar archive.
type ArchiveEntry struct {
	Name string
	Body []byte
}

// ArchiveReader reads regular file entries of an archive sequentially.
// Next returns io.EOF after the last entry.
type ArchiveReader interface {
	Next() (*ArchiveEntry, error)
	Close() error
}

type tarArchive struct {
	path string
	fd   *os.File
	gr   *gzip.Reader
	tr   *tar.Reader
}

// OpenArchive opens tar archive. gzip compression is detected by magic number.
func OpenArchive(path string) (ArchiveReader, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open archive: %s", path)
	}

	archive := &tarArchive{path: path, fd: fd}
	br := bufio.NewReader(fd)

	compressed, err := isGzip(br)
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "Failed to read archive header: %s", path)
	}

	if compressed {
		gr, err := gzip.NewReader(br)
		if err != nil {
			fd.Close()
			return nil, errors.Wrapf(err, "Failed to open gzip stream: %s", path)
		}
		archive.gr = gr
		archive.tr = tar.NewReader(gr)
	} else {
		archive.tr = tar.NewReader(br)
	}

	return archive, nil
}

func (x *tarArchive) nextHeader() (*tar.Header, error) {
	for {
		hdr, err := x.tr.Next()
		if err == io.EOF {
			return nil, io.EOF
		} else if err != nil {
			return nil, errors.Wrapf(err, "Failed to read tar header: %s", x.path)
		}

		if hdr.FileInfo().Mode().IsRegular() {
			return hdr, nil
		}
	}
}

func (x *tarArchive) Next() (*ArchiveEntry, error) {
	hdr, err := x.nextHeader()
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(x.tr)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read tar entry %s in %s", hdr.Name, x.path)
	}

	return &ArchiveEntry{Name: hdr.Name, Body: body}, nil
}

func (x *tarArchive) Close() error {
	if x.fd == nil {
		return nil
	}

	if x.gr != nil {
		x.gr.Close()
	}
	err := x.fd.Close()
	x.fd = nil
	if err != nil {
		return errors.Wrapf(err, "Failed to close archive: %s", x.path)
	}
	return nil
}

// CountArchiveEntries counts regular file entries without reading their bodies.
func CountArchiveEntries(path string) (int, error) {
	reader, err := OpenArchive(path)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	archive := reader.(*tarArchive)
	count := 0
	for {
		if _, err := archive.nextHeader(); err == io.EOF {
			return count, nil
		} else if err != nil {
			return 0, err
		}
		count++
	}
}

func isGzip(br *bufio.Reader) (bool, error) {
	magic, err := br.Peek(2)
	if err == io.EOF || err == bufio.ErrBufferFull {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return magic[0] == 0x1f && magic[1] == 0x8b, nil
}
