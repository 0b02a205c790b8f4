package service

import (
	"io"

	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/pkg/models"
)

const (
	manifestColumnFile        = "Article File"
	manifestColumnCitation    = "Article Citation"
	manifestColumnAccessionID = "AccessionID"
	manifestColumnLastUpdated = "LastUpdated (YYYY-MM-DD HH:MM:SS)"
	manifestColumnPMID        = "PMID"
	manifestColumnLicense     = "License"
	manifestColumnRetracted   = "Retracted"
)

// LoadManifest reads *.filelist.csv as ordered rows.
func LoadManifest(path string) ([]*models.ManifestRow, error) {
	tbl, err := adaptor.OpenTable(path)
	if err != nil {
		return nil, err
	}
	defer tbl.Close()

	if err := tbl.Require(
		manifestColumnCitation,
		manifestColumnAccessionID,
		manifestColumnLastUpdated,
		manifestColumnPMID,
		manifestColumnLicense,
		manifestColumnRetracted,
	); err != nil {
		return nil, err
	}

	var rows []*models.ManifestRow
	for {
		row, err := tbl.Read()
		if err == io.EOF {
			return rows, nil
		} else if err != nil {
			return nil, err
		}

		rows = append(rows, &models.ManifestRow{
			ArticleFile: row.Get(manifestColumnFile),
			Citation:    row.Get(manifestColumnCitation),
			AccessionID: row.Get(manifestColumnAccessionID),
			LastUpdated: row.Get(manifestColumnLastUpdated),
			PMID:        row.Get(manifestColumnPMID),
			License:     row.Get(manifestColumnLicense),
			Retracted:   row.Get(manifestColumnRetracted),
		})
	}
}
