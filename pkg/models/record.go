package models

// PMCEntry is bibliographic metadata of an article in PMC-ids table. Nil or empty
// fields mean the cell was empty in the table.
type PMCEntry struct {
	Journal string
	Year    *int32
	DOI     string
}

// IDIndex maps accession identifier (PMCID) to PMCEntry. It is built once per run
// and read only after that.
type IDIndex map[string]*PMCEntry

// ManifestRow is one row of *.filelist.csv. Row i describes i-th entry of the paired archive.
type ManifestRow struct {
	ArticleFile string
	Citation    string
	AccessionID string
	LastUpdated string
	PMID        string
	License     string
	Retracted   string
}

// ArticleRecord is a normalized article emitted to consumer. Nil Journal, Year or DOI
// indicates the value is missing.
type ArticleRecord struct {
	Text        string
	PMID        string
	AccessionID string
	License     string
	LastUpdated string
	Retracted   string
	Citation    string
	DecodedAs   string
	Journal     *string
	Year        *int32
	DOI         *string
	OASubset    string
}

// IndexedRecord is ArticleRecord with run-wide unique sequential index.
type IndexedRecord struct {
	Index  int64
	Record *ArticleRecord
}

// CorpusRow is flat output row of IndexedRecord for parquet, msgpack and JSON.
type CorpusRow struct {
	Index       int64   `parquet:"name=index, type=INT64" json:"index" msgpack:"index"`
	Text        string  `parquet:"name=text, type=UTF8" json:"text" msgpack:"text"`
	PMID        string  `parquet:"name=pmid, type=UTF8" json:"pmid" msgpack:"pmid"`
	AccessionID string  `parquet:"name=accession_id, type=UTF8" json:"accession_id" msgpack:"accession_id"`
	License     string  `parquet:"name=license, type=UTF8, encoding=PLAIN_DICTIONARY" json:"license" msgpack:"license"`
	LastUpdated string  `parquet:"name=last_updated, type=UTF8" json:"last_updated" msgpack:"last_updated"`
	Retracted   string  `parquet:"name=retracted, type=UTF8, encoding=PLAIN_DICTIONARY" json:"retracted" msgpack:"retracted"`
	Citation    string  `parquet:"name=citation, type=UTF8" json:"citation" msgpack:"citation"`
	DecodedAs   string  `parquet:"name=decoded_as, type=UTF8, encoding=PLAIN_DICTIONARY" json:"decoded_as" msgpack:"decoded_as"`
	Journal     *string `parquet:"name=journal, type=UTF8, encoding=PLAIN_DICTIONARY, repetitiontype=OPTIONAL" json:"journal" msgpack:"journal"`
	Year        *int32  `parquet:"name=year, type=INT32, repetitiontype=OPTIONAL" json:"year" msgpack:"year"`
	DOI         *string `parquet:"name=doi, type=UTF8, repetitiontype=OPTIONAL" json:"doi" msgpack:"doi"`
	OASubset    string  `parquet:"name=oa_subset, type=UTF8, encoding=PLAIN_DICTIONARY" json:"oa_subset" msgpack:"oa_subset"`
}

// NewCorpusRow flattens IndexedRecord.
func NewCorpusRow(q *IndexedRecord) CorpusRow {
	rec := q.Record
	return CorpusRow{
		Index:       q.Index,
		Text:        rec.Text,
		PMID:        rec.PMID,
		AccessionID: rec.AccessionID,
		License:     rec.License,
		LastUpdated: rec.LastUpdated,
		Retracted:   rec.Retracted,
		Citation:    rec.Citation,
		DecodedAs:   rec.DecodedAs,
		Journal:     rec.Journal,
		Year:        rec.Year,
		DOI:         rec.DOI,
		OASubset:    rec.OASubset,
	}
}

// DataSize returns approximate byte size of the row before compression.
func (x CorpusRow) DataSize() int64 {
	size := 8 + len(x.Text) + len(x.PMID) + len(x.AccessionID) + len(x.License) +
		len(x.LastUpdated) + len(x.Retracted) + len(x.Citation) + len(x.DecodedAs) +
		len(x.OASubset)
	if x.Journal != nil {
		size += len(*x.Journal)
	}
	if x.Year != nil {
		size += 4
	}
	if x.DOI != nil {
		size += len(*x.DOI)
	}
	return int64(size)
}
