package builder_test

import (
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/internal/mock"
	"github.com/m-mizutani/pmcoa/internal/service"
	"github.com/m-mizutani/pmcoa/internal/testutil"
	"github.com/m-mizutani/pmcoa/pkg/builder"
	"github.com/m-mizutani/pmcoa/pkg/handler"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDataDir(t *testing.T) string {
	dataDir := t.TempDir()

	testutil.WriteCSV(t, filepath.Join(dataDir, service.PMCIDsFileName), testutil.PMCIDsHeader, [][]string{
		testutil.PMCIDsRow("PMC1", "Journal One", "2001", "10.1000/one"),
		testutil.PMCIDsRow("PMC3", "Journal Three", "", ""),
	})

	testutil.WriteArchivePair(t, testutil.SubsetTxtDir(dataDir, "oa_comm"), "oa_comm_txt.incr.2023-01-01",
		[]testutil.Article{
			{AccessionID: "PMC1", PMID: "11", Body: []byte("first")},
			{AccessionID: "PMC2", PMID: "12", Body: []byte("second")},
		})
	testutil.WriteArchivePair(t, testutil.SubsetTxtDir(dataDir, "oa_other"), "oa_other_txt.PMC000xxxxxx.baseline.2022-12-17",
		[]testutil.Article{
			{AccessionID: "PMC3", PMID: "13", Body: []byte{'t', 'h', 'i', 'r', 'd', 0xe9}},
		})

	return dataDir
}

func readRows(t *testing.T, files []*service.DumpFile) []*models.CorpusRow {
	var rows []*models.CorpusRow
	for _, f := range files {
		format, err := adaptor.LookupFormatByPath(f.Path)
		require.NoError(t, err)
		dec, err := format.NewDecoder(f.Path)
		require.NoError(t, err)

		for {
			row, err := dec.Decode()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			rows = append(rows, row)
		}
		require.NoError(t, dec.Close())
	}
	return rows
}

func TestBuild(t *testing.T) {
	t.Run("build all subsets", func(tt *testing.T) {
		dataDir := setupDataDir(tt)
		outDir := filepath.Join(tt.TempDir(), "out")

		result, err := builder.Build(handler.Arguments{
			DataDir:   dataDir,
			OutputDir: outDir,
			Format:    "jsonl",
		})
		require.NoError(tt, err)
		assert.Equal(tt, int64(3), result.Records)
		assert.Equal(tt, int64(3), result.Written)
		require.Equal(tt, 1, len(result.Files))
		assert.Equal(tt, filepath.Join(outDir, "pmcoa-"+result.RunID+"-00000.jsonl.gz"), result.Files[0].Path)
		assert.Equal(tt, 6, len(result.Stats))
		assert.Equal(tt, 0, len(result.Uploaded))

		var phases []string
		for _, p := range result.Profile {
			phases = append(phases, p.Phase)
		}
		assert.Equal(tt, []string{builder.PhaseLoadIndex, builder.PhaseScan, builder.PhaseDump}, phases)
		assert.Equal(tt, int64(4), result.Profile[1].Count)
		assert.Equal(tt, int64(3), result.Profile[2].Count)

		rows := readRows(tt, result.Files)
		require.Equal(tt, 3, len(rows))

		assert.Equal(tt, int64(0), rows[0].Index)
		assert.Equal(tt, "PMC1", rows[0].AccessionID)
		assert.Equal(tt, "first", rows[0].Text)
		require.NotNil(tt, rows[0].Journal)
		assert.Equal(tt, "Journal One", *rows[0].Journal)
		require.NotNil(tt, rows[0].Year)
		assert.Equal(tt, int32(2001), *rows[0].Year)
		assert.Equal(tt, "oa_comm", rows[0].OASubset)

		assert.Equal(tt, int64(1), rows[1].Index)
		assert.Nil(tt, rows[1].Journal)
		assert.Nil(tt, rows[1].Year)
		assert.Nil(tt, rows[1].DOI)

		assert.Equal(tt, int64(2), rows[2].Index)
		assert.Equal(tt, "thirdé", rows[2].Text)
		assert.Equal(tt, "latin-1", rows[2].DecodedAs)
		assert.Equal(tt, "oa_other", rows[2].OASubset)
		require.NotNil(tt, rows[2].Journal)
		assert.Nil(tt, rows[2].Year)
		assert.Nil(tt, rows[2].DOI)
	})

	t.Run("filter keeps indices of the whole run", func(tt *testing.T) {
		dataDir := setupDataDir(tt)
		result, err := builder.Build(handler.Arguments{
			DataDir:   dataDir,
			OutputDir: tt.TempDir(),
			Format:    "msgpack",
			Filter:    `.journal != null`,
		})
		require.NoError(tt, err)
		assert.Equal(tt, int64(3), result.Records)
		assert.Equal(tt, int64(2), result.Written)

		rows := readRows(tt, result.Files)
		require.Equal(tt, 2, len(rows))
		assert.Equal(tt, int64(0), rows[0].Index)
		assert.Equal(tt, int64(2), rows[1].Index)
	})

	t.Run("subset selection", func(tt *testing.T) {
		dataDir := setupDataDir(tt)
		result, err := builder.Build(handler.Arguments{
			DataDir:   dataDir,
			OutputDir: tt.TempDir(),
			Subsets:   []string{"other"},
		})
		require.NoError(tt, err)
		assert.Equal(tt, int64(1), result.Records)
		assert.Equal(tt, 2, len(result.Stats))

		rows := readRows(tt, result.Files)
		require.Equal(tt, 1, len(rows))
		assert.Equal(tt, int64(0), rows[0].Index)
		assert.Equal(tt, "PMC3", rows[0].AccessionID)
	})

	t.Run("upload to S3", func(tt *testing.T) {
		dataDir := setupDataDir(tt)
		bucket := uuid.New().String()
		result, err := builder.Build(handler.Arguments{
			DataDir:   dataDir,
			OutputDir: tt.TempDir(),
			Prefix:    "corpus",
			SizeLimit: 1,
			S3Dst:     bucket + "@us-east-1:pmcoa/v1",
			NewS3:     mock.NewS3Client,
		})
		require.NoError(tt, err)
		require.Equal(tt, 3, len(result.Files))
		require.Equal(tt, 3, len(result.Uploaded))

		client := mock.NewS3Client("us-east-1").(*mock.S3Client)
		keys := client.Keys(bucket)
		sort.Strings(keys)
		assert.Equal(tt, []string{
			"pmcoa/v1/corpus-" + result.RunID + "-00000.parquet",
			"pmcoa/v1/corpus-" + result.RunID + "-00001.parquet",
			"pmcoa/v1/corpus-" + result.RunID + "-00002.parquet",
		}, keys)
	})

	t.Run("no data dir", func(tt *testing.T) {
		_, err := builder.Build(handler.Arguments{})
		assert.Equal(tt, service.ErrNoDataDir, err)
	})

	t.Run("no PMC-ids file", func(tt *testing.T) {
		_, err := builder.Build(handler.Arguments{DataDir: tt.TempDir(), OutputDir: tt.TempDir()})
		assert.Error(tt, err)
	})

	t.Run("manifest count mismatch", func(tt *testing.T) {
		dataDir := setupDataDir(tt)
		dir := testutil.SubsetTxtDir(dataDir, "oa_comm")
		testutil.WriteTar(tt, filepath.Join(dir, "oa_comm_txt.incr.2023-01-02.tar.gz"), true, nil)

		_, err := builder.Build(handler.Arguments{DataDir: dataDir, OutputDir: tt.TempDir()})
		assert.True(tt, errors.Is(err, service.ErrFileCountMismatch))
	})
}
