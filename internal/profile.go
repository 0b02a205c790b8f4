package internal

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

type profileRecord struct {
	current *time.Time
	total   time.Duration
	max     time.Duration
	count   int64
}

// ProfileResult is elapsed time summary of a phase
type ProfileResult struct {
	Phase string        `json:"phase"`
	Total time.Duration `json:"total"`
	Max   time.Duration `json:"max"`
	Count int64         `json:"count"`
}

// Profile measures elapsed time of named phases. Not goroutine safe.
type Profile struct {
	records map[string]*profileRecord
	order   []string
	now     func() time.Time
}

// NewProfile is constructor of Profile
func NewProfile() *Profile {
	return &Profile{
		records: map[string]*profileRecord{},
		now:     time.Now,
	}
}

// Start begins measurement of phase.
func (x *Profile) Start(phase string) error {
	p, ok := x.records[phase]
	if !ok {
		p = &profileRecord{}
		x.records[phase] = p
		x.order = append(x.order, phase)
	}

	if p.current != nil {
		return errors.Errorf("Phase is started twice: %s", phase)
	}

	now := x.now()
	p.current = &now
	p.count++
	return nil
}

// Stop ends measurement of phase.
func (x *Profile) Stop(phase string) error {
	now := x.now()

	p, ok := x.records[phase]
	if !ok || p.current == nil {
		return errors.Errorf("Phase is not started: %s", phase)
	}

	sub := now.Sub(*p.current)
	p.total += sub
	if p.max < sub {
		p.max = sub
	}

	p.current = nil
	return nil
}

// Measure runs f as a phase.
func (x *Profile) Measure(phase string, f func() error) error {
	if err := x.Start(phase); err != nil {
		return err
	}
	err := f()
	if serr := x.Stop(phase); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Results returns summary of phases in order of first Start. If sorted is true,
// results are ordered by total time descending.
func (x *Profile) Results(sorted bool) []ProfileResult {
	results := make([]ProfileResult, 0, len(x.order))
	for _, phase := range x.order {
		r := x.records[phase]
		results = append(results, ProfileResult{
			Phase: phase,
			Total: r.total,
			Max:   r.max,
			Count: r.count,
		})
	}

	if sorted {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Total > results[j].Total
		})
	}
	return results
}
