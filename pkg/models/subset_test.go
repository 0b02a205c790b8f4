package models_test

import (
	"testing"

	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSubset(t *testing.T) {
	s, err := models.LookupSubset("commercial")
	require.NoError(t, err)
	assert.Equal(t, "oa_comm", s.Label)

	s, err = models.LookupSubset("oa_noncomm")
	require.NoError(t, err)
	assert.Equal(t, "non_commercial", s.Key)

	_, err = models.LookupSubset("proprietary")
	assert.Error(t, err)
}

func TestPartitionKindOrder(t *testing.T) {
	require.Equal(t, 2, len(models.PartitionKinds))
	assert.Equal(t, "incr", models.PartitionKinds[0].FileMarker())
	assert.Equal(t, "baseline", models.PartitionKinds[1].FileMarker())
}

func TestNewCorpusRow(t *testing.T) {
	journal := "PLoS One"
	year := int32(2012)
	q := &models.IndexedRecord{
		Index: 7,
		Record: &models.ArticleRecord{
			Text:        "abc",
			AccessionID: "PMC1",
			DecodedAs:   "utf-8",
			Journal:     &journal,
			Year:        &year,
			OASubset:    "oa_comm",
		},
	}

	row := models.NewCorpusRow(q)
	assert.Equal(t, int64(7), row.Index)
	assert.Equal(t, "abc", row.Text)
	assert.Equal(t, "PLoS One", *row.Journal)
	assert.Equal(t, int32(2012), *row.Year)
	assert.Nil(t, row.DOI)
	assert.Equal(t, int64(8+3+4+5+7+8+4), row.DataSize())
}
