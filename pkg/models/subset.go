package models

import "fmt"

// Subset is a licensing category of PMC Open Access corpus.
type Subset struct {
	// Key is name used in configuration (e.g. "commercial")
	Key string
	// Label is directory name under oa_bulk and value of oa_subset field (e.g. "oa_comm")
	Label string
}

// Subsets is list of all subsets in scan order.
var Subsets = []Subset{
	{Key: "commercial", Label: "oa_comm"},
	{Key: "non_commercial", Label: "oa_noncomm"},
	{Key: "other", Label: "oa_other"},
}

// LookupSubset finds Subset by Key or Label.
func LookupSubset(name string) (Subset, error) {
	for _, s := range Subsets {
		if s.Key == name || s.Label == name {
			return s, nil
		}
	}
	return Subset{}, fmt.Errorf("Unknown subset: %s", name)
}

// PartitionKind is release type of archive files in a subset.
type PartitionKind string

const (
	// PartitionIncremental is delta update archives
	PartitionIncremental PartitionKind = "incremental"
	// PartitionBaseline is full snapshot archives
	PartitionBaseline PartitionKind = "baseline"
)

// PartitionKinds is list of partition kinds in scan order.
var PartitionKinds = []PartitionKind{
	PartitionIncremental,
	PartitionBaseline,
}

// FileMarker returns substring of file name that identifies the partition kind.
func (x PartitionKind) FileMarker() string {
	switch x {
	case PartitionIncremental:
		return "incr"
	case PartitionBaseline:
		return "baseline"
	default:
		return string(x)
	}
}
