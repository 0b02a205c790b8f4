package service_test

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/pmcoa/internal/service"
	"github.com/m-mizutani/pmcoa/internal/testutil"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticles(n int) []testutil.Article {
	articles := make([]testutil.Article, n)
	for i := range articles {
		articles[i] = testutil.Article{
			AccessionID: fmt.Sprintf("PMC%d", i+1),
			PMID:        fmt.Sprintf("%d", 1000+i),
			Body:        []byte(fmt.Sprintf("text of article %d", i+1)),
		}
	}
	return articles
}

func scanAll(t *testing.T, scanner *service.ArchiveScanner) []*models.ArticleRecord {
	var records []*models.ArticleRecord
	for {
		rec, err := scanner.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
	return records
}

func TestArchiveScanner(t *testing.T) {
	year := int32(2015)
	index := models.IDIndex{
		"PMC1": {Journal: "PeerJ", Year: &year, DOI: "10.7717/peerj.1"},
	}

	t.Run("records follow archive order with positional metadata", func(tt *testing.T) {
		articles := newArticles(3)
		archive, manifest := testutil.WriteArchivePair(tt, tt.TempDir(), "oa_comm_txt.incr.2023-01-01", articles)

		scanner, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{Subset: "oa_comm"})
		require.NoError(tt, err)
		defer scanner.Close()

		records := scanAll(tt, scanner)
		require.Equal(tt, 3, len(records))
		for i, rec := range records {
			assert.Equal(tt, articles[i].AccessionID, rec.AccessionID)
			assert.Equal(tt, articles[i].PMID, rec.PMID)
			assert.Equal(tt, string(articles[i].Body), rec.Text)
			assert.Equal(tt, "utf-8", rec.DecodedAs)
			assert.Equal(tt, "oa_comm", rec.OASubset)
		}

		require.NotNil(tt, records[0].Journal)
		assert.Equal(tt, "PeerJ", *records[0].Journal)
		assert.Equal(tt, int32(2015), *records[0].Year)
		assert.Equal(tt, "10.7717/peerj.1", *records[0].DOI)
		assert.Nil(tt, records[1].Journal)
		assert.Nil(tt, records[1].Year)
		assert.Nil(tt, records[1].DOI)

		stats := scanner.Stats()
		assert.Equal(tt, int64(3), stats.Records)
		assert.Equal(tt, int64(3), stats.UTF8)
		assert.Equal(tt, int64(2), stats.NotInIndex)

		_, err = scanner.Next()
		assert.Equal(tt, io.EOF, err)
	})

	t.Run("malformed UTF-8 entry is decoded as latin-1", func(tt *testing.T) {
		articles := newArticles(2)
		articles[1].Body = []byte{'c', 'a', 'f', 0xe9}
		archive, manifest := testutil.WriteArchivePair(tt, tt.TempDir(), "a", articles)

		scanner, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{})
		require.NoError(tt, err)
		defer scanner.Close()

		records := scanAll(tt, scanner)
		require.Equal(tt, 2, len(records))
		assert.Equal(tt, "utf-8", records[0].DecodedAs)
		assert.Equal(tt, "latin-1", records[1].DecodedAs)
		assert.Equal(tt, "café", records[1].Text)
		assert.Equal(tt, int64(1), scanner.Stats().Latin1)
	})

	t.Run("5 entries and 4 rows fails before any record", func(tt *testing.T) {
		dir := tt.TempDir()
		articles := newArticles(5)
		archive, manifest := testutil.WriteArchivePair(tt, dir, "a", articles)

		var rows [][]string
		for _, a := range articles[:4] {
			rows = append(rows, a.ManifestRow())
		}
		testutil.WriteCSV(tt, manifest, testutil.ManifestHeader, rows)

		scanner, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{})
		require.Error(tt, err)
		assert.Nil(tt, scanner)
		assert.True(tt, errors.Is(err, service.ErrEntryCountMismatch))
	})

	t.Run("more rows than entries also fails", func(tt *testing.T) {
		dir := tt.TempDir()
		articles := newArticles(2)
		archive, manifest := testutil.WriteArchivePair(tt, dir, "a", articles[:1])
		testutil.WriteCSV(tt, manifest, testutil.ManifestHeader, [][]string{
			articles[0].ManifestRow(), articles[1].ManifestRow(),
		})

		_, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{})
		assert.True(tt, errors.Is(err, service.ErrEntryCountMismatch))
	})

	t.Run("keyed pairing matches by Article File", func(tt *testing.T) {
		dir := tt.TempDir()
		articles := newArticles(3)
		archive, manifest := testutil.WriteArchivePair(tt, dir, "a", articles)

		// Reverse rows so that positional pairing would be wrong.
		testutil.WriteCSV(tt, manifest, testutil.ManifestHeader, [][]string{
			articles[2].ManifestRow(), articles[1].ManifestRow(), articles[0].ManifestRow(),
		})

		scanner, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{
			Pairing: service.PairingKeyed,
		})
		require.NoError(tt, err)
		defer scanner.Close()

		records := scanAll(tt, scanner)
		require.Equal(tt, 3, len(records))
		for i, rec := range records {
			assert.Equal(tt, articles[i].AccessionID, rec.AccessionID)
			assert.Equal(tt, string(articles[i].Body), rec.Text)
		}
	})

	t.Run("keyed pairing fails on unknown entry", func(tt *testing.T) {
		dir := tt.TempDir()
		articles := newArticles(2)
		archive, manifest := testutil.WriteArchivePair(tt, dir, "a", articles)

		other := articles[1]
		other.AccessionID = "PMC404"
		testutil.WriteCSV(tt, manifest, testutil.ManifestHeader, [][]string{
			articles[0].ManifestRow(), other.ManifestRow(),
		})

		scanner, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{
			Pairing: service.PairingKeyed,
		})
		require.NoError(tt, err)
		defer scanner.Close()

		_, err = scanner.Next()
		require.NoError(tt, err)
		_, err = scanner.Next()
		assert.True(tt, errors.Is(err, service.ErrRowNotFound))
	})

	t.Run("missing archive", func(tt *testing.T) {
		dir := tt.TempDir()
		_, manifest := testutil.WriteArchivePair(tt, dir, "a", newArticles(1))

		_, err := service.NewArchiveScanner(filepath.Join(dir, "none.tar.gz"), manifest, index, service.ScannerOptions{})
		assert.Error(tt, err)
	})

	t.Run("Next after Close returns EOF", func(tt *testing.T) {
		archive, manifest := testutil.WriteArchivePair(tt, tt.TempDir(), "a", newArticles(2))

		scanner, err := service.NewArchiveScanner(archive, manifest, index, service.ScannerOptions{})
		require.NoError(tt, err)
		require.NoError(tt, scanner.Close())
		require.NoError(tt, scanner.Close())

		_, err = scanner.Next()
		assert.Equal(tt, io.EOF, err)
	})
}

func TestParsePairingMode(t *testing.T) {
	mode, err := service.ParsePairingMode("")
	require.NoError(t, err)
	assert.Equal(t, service.PairingPositional, mode)

	mode, err = service.ParsePairingMode("keyed")
	require.NoError(t, err)
	assert.Equal(t, service.PairingKeyed, mode)

	_, err = service.ParsePairingMode("random")
	assert.Error(t, err)
}
