package transform

import (
	"github.com/m-mizutani/pmcoa/pkg/models"
)

// BuildRecord merges a manifest row, decoded entry body and PMC-ids metadata into
// ArticleRecord. found is false if the accession ID is not in index.
func BuildRecord(row *models.ManifestRow, body []byte, index models.IDIndex, subset string) (rec *models.ArticleRecord, found bool) {
	text, scheme := DecodeText(body)

	rec = &models.ArticleRecord{
		Text:        text,
		PMID:        row.PMID,
		AccessionID: row.AccessionID,
		License:     row.License,
		LastUpdated: row.LastUpdated,
		Retracted:   row.Retracted,
		Citation:    row.Citation,
		DecodedAs:   scheme,
		OASubset:    subset,
	}

	entry, ok := index[row.AccessionID]
	if !ok {
		return rec, false
	}

	rec.Journal = optionalString(entry.Journal)
	rec.Year = entry.Year
	rec.DOI = optionalString(entry.DOI)
	return rec, true
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
