package service

import (
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PMCIDsFileName is file name of identifier cross reference table under data directory.
const PMCIDsFileName = "PMC-ids.csv.gz"

const (
	pmcIDsColumnID      = "PMCID"
	pmcIDsColumnJournal = "Journal Title"
	pmcIDsColumnYear    = "Year"
	pmcIDsColumnDOI     = "DOI"
)

// LoadIDIndex reads whole PMC-ids table into memory. Later row wins if PMCID is duplicated.
func LoadIDIndex(path string) (models.IDIndex, error) {
	tbl, err := adaptor.OpenTable(path)
	if err != nil {
		return nil, err
	}
	defer tbl.Close()

	if err := tbl.Require(pmcIDsColumnID, pmcIDsColumnJournal, pmcIDsColumnYear, pmcIDsColumnDOI); err != nil {
		return nil, err
	}

	index := models.IDIndex{}
	for {
		row, err := tbl.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		year, err := parseYear(row.Get(pmcIDsColumnYear))
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid Year at line %d of %s", row.Line, path)
		}

		index[row.Get(pmcIDsColumnID)] = &models.PMCEntry{
			Journal: row.Get(pmcIDsColumnJournal),
			Year:    year,
			DOI:     row.Get(pmcIDsColumnDOI),
		}
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"entries": len(index),
	}).Info("Loaded PMC-ids table")

	return index, nil
}

func parseYear(v string) (*int32, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil, err
	}
	year := int32(n)
	return &year, nil
}
