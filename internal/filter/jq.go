package filter

import (
	"encoding/json"

	"github.com/itchyny/gojq"
	"github.com/m-mizutani/pmcoa/pkg/models"
	"github.com/pkg/errors"
)

// Filter selects CorpusRow by jq expression against JSON form of the row.
type Filter struct {
	src   string
	query *gojq.Query
}

// New parses jq expression.
func New(src string) (*Filter, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to parse filter: %s", src)
	}

	return &Filter{src: src, query: q}, nil
}

// String returns the original expression
func (x *Filter) String() string { return x.src }

// Match returns true if the expression yields a truthy value (neither false nor null)
// for the row. Multiple outputs are OR'ed.
func (x *Filter) Match(row *models.CorpusRow) (bool, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return false, errors.Wrapf(err, "Fail to marshal row %d", row.Index)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, errors.Wrapf(err, "Fail to unmarshal row %d", row.Index)
	}

	iter := x.query.Run(v)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := out.(error); ok {
			return false, errors.Wrapf(err, "Fail to evaluate filter '%s' for row %d", x.src, row.Index)
		}

		if b, ok := out.(bool); ok && !b {
			continue
		}
		if out != nil {
			return true, nil
		}
	}

	return false, nil
}
