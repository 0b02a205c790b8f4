package testutil

import (
	"archive/tar"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// ManifestHeader is column set of *.filelist.csv in PMC OA bulk package.
var ManifestHeader = []string{
	"Article File",
	"Article Citation",
	"AccessionID",
	"LastUpdated (YYYY-MM-DD HH:MM:SS)",
	"PMID",
	"License",
	"Retracted",
}

// PMCIDsHeader is column set of PMC-ids.csv.gz
var PMCIDsHeader = []string{
	"Journal Title", "ISSN", "eISSN", "Year", "Volume", "Issue", "Page",
	"DOI", "PMCID", "PMID", "Manuscript Id", "Release Date",
}

// Entry is a file in test archive
type Entry struct {
	Name string
	Body []byte
	Dir  bool
}

// Article is test data that produces an archive entry and a manifest row.
type Article struct {
	AccessionID string
	PMID        string
	Body        []byte
}

// FileName returns archive entry name of the article.
func (x Article) FileName() string {
	return "PMC000xxxxxx/" + x.AccessionID + ".txt"
}

// ManifestRow returns row of *.filelist.csv for the article.
func (x Article) ManifestRow() []string {
	return []string{
		x.FileName(),
		"Citation of " + x.AccessionID,
		x.AccessionID,
		"2022-12-17 10:00:00",
		x.PMID,
		"CC BY",
		"no",
	}
}

// WriteTar creates tar archive. The archive is gzip compressed if compress is true.
func WriteTar(t *testing.T, path string, compress bool, entries []Entry) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	fd, err := os.Create(path)
	require.NoError(t, err)
	defer fd.Close()

	var w io.Writer = fd
	var gw *gzip.Writer
	if compress {
		gw = gzip.NewWriter(fd)
		w = gw
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		if e.Dir {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     e.Name,
				Typeflag: tar.TypeDir,
				Mode:     0755,
			}))
			continue
		}

		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     e.Name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(e.Body)),
		}))
		_, err := tw.Write(e.Body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	if gw != nil {
		require.NoError(t, gw.Close())
	}
}

// WriteCSV creates CSV file. The file is gzip compressed if path ends with ".gz".
func WriteCSV(t *testing.T, path string, header []string, rows [][]string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	fd, err := os.Create(path)
	require.NoError(t, err)
	defer fd.Close()

	var w io.Writer = fd
	var gw *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gw = gzip.NewWriter(fd)
		w = gw
	}

	cw := csv.NewWriter(w)
	require.NoError(t, cw.Write(header))
	require.NoError(t, cw.WriteAll(rows))
	cw.Flush()
	require.NoError(t, cw.Error())

	if gw != nil {
		require.NoError(t, gw.Close())
	}
}

// WriteArchivePair creates {base}.tar.gz and {base}.filelist.csv in dir with
// strictly parallel entries and rows.
func WriteArchivePair(t *testing.T, dir, base string, articles []Article) (archivePath, manifestPath string) {
	var entries []Entry
	var rows [][]string
	for _, a := range articles {
		entries = append(entries, Entry{Name: a.FileName(), Body: a.Body})
		rows = append(rows, a.ManifestRow())
	}

	archivePath = filepath.Join(dir, base+".tar.gz")
	manifestPath = filepath.Join(dir, base+".filelist.csv")
	WriteTar(t, archivePath, true, entries)
	WriteCSV(t, manifestPath, ManifestHeader, rows)
	return
}

// PMCIDsRow builds a row of PMC-ids.csv.gz
func PMCIDsRow(pmcid, journal, year, doi string) []string {
	return []string{journal, "", "", year, "1", "1", "e1", doi, pmcid, "", "", "live"}
}

// SubsetTxtDir returns {dataDir}/oa_bulk/{label}/txt
func SubsetTxtDir(dataDir, label string) string {
	return filepath.Join(dataDir, "oa_bulk", label, "txt")
}
