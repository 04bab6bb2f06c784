// Package diff computes the delta between two stored validation runs.
// It identifies domains that are new, removed, or whose classification or
// parked state changed between the two runs.
package diff

import (
	"fmt"
	"sort"

	"github.com/hakim/domainvet/internal/models"
)

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// ResultLoader is the minimal store contract needed to load a snapshot.
type ResultLoader interface {
	GetResults(runID string) ([]models.ValidationResult, error)
}

// Snapshot holds the results of a single run, keyed for comparison.
type Snapshot struct {
	RunID   string
	Results []models.ValidationResult
}

// LoadSnapshot reads a run's stored results.
func LoadSnapshot(loader ResultLoader, runID string) (*Snapshot, error) {
	results, err := loader.GetResults(runID)
	if err != nil {
		return nil, fmt.Errorf("loading results for run %s: %w", runID, err)
	}
	return &Snapshot{RunID: runID, Results: results}, nil
}

func (s *Snapshot) byDomain() map[string]models.ValidationResult {
	m := make(map[string]models.ValidationResult, len(s.Results))
	for _, r := range s.Results {
		m[r.Domain] = r
	}
	return m
}

// ---------------------------------------------------------------------------
// DiffResult
// ---------------------------------------------------------------------------

// Change pairs the two verdicts recorded for a domain present in both runs.
type Change struct {
	Domain   string
	Previous models.ValidationResult
	Current  models.ValidationResult
}

// DiffResult holds the complete delta between a current and a previous run.
// All slice fields are non-nil and sorted by domain.
type DiffResult struct {
	CurrentRunID  string
	PreviousRunID string

	NewDomains     []models.ValidationResult
	RemovedDomains []models.ValidationResult

	// Upgraded moved toward Valid; Downgraded moved toward Invalid.
	Upgraded   []Change
	Downgraded []Change

	NewlyParked    []Change
	NoLongerParked []Change

	CurrentSummary  models.BatchSummary
	PreviousSummary models.BatchSummary
}

// classRank orders verdicts from best to worst.
var classRank = map[models.Classification]int{
	models.ClassValid:   0,
	models.ClassRisky:   1,
	models.ClassInvalid: 2,
}

// ---------------------------------------------------------------------------
// ComputeDiff
// ---------------------------------------------------------------------------

// ComputeDiff calculates the delta between current and previous snapshots.
// Both arguments must be non-nil; pass an empty Snapshot for the
// "no previous run" case.
func ComputeDiff(current, previous *Snapshot) *DiffResult {
	dr := &DiffResult{
		CurrentRunID:    current.RunID,
		PreviousRunID:   previous.RunID,
		NewDomains:      []models.ValidationResult{},
		RemovedDomains:  []models.ValidationResult{},
		Upgraded:        []Change{},
		Downgraded:      []Change{},
		NewlyParked:     []Change{},
		NoLongerParked:  []Change{},
		CurrentSummary:  models.Summarize(current.Results),
		PreviousSummary: models.Summarize(previous.Results),
	}

	prev := previous.byDomain()
	curr := current.byDomain()

	for domain, c := range curr {
		p, existed := prev[domain]
		if !existed {
			dr.NewDomains = append(dr.NewDomains, c)
			continue
		}

		ch := Change{Domain: domain, Previous: p, Current: c}
		switch rc, rp := rank(c.Classification), rank(p.Classification); {
		case rc < rp:
			dr.Upgraded = append(dr.Upgraded, ch)
		case rc > rp:
			dr.Downgraded = append(dr.Downgraded, ch)
		}

		switch {
		case c.ParkedDomain && !p.ParkedDomain:
			dr.NewlyParked = append(dr.NewlyParked, ch)
		case !c.ParkedDomain && p.ParkedDomain:
			dr.NoLongerParked = append(dr.NoLongerParked, ch)
		}
	}

	for domain, p := range prev {
		if _, exists := curr[domain]; !exists {
			dr.RemovedDomains = append(dr.RemovedDomains, p)
		}
	}

	sortResults(dr.NewDomains)
	sortResults(dr.RemovedDomains)
	for _, changes := range [][]Change{dr.Upgraded, dr.Downgraded, dr.NewlyParked, dr.NoLongerParked} {
		sortChanges(changes)
	}

	return dr
}

// IsEmpty returns true when no changes exist across all categories.
func (dr *DiffResult) IsEmpty() bool {
	return len(dr.NewDomains) == 0 &&
		len(dr.RemovedDomains) == 0 &&
		len(dr.Upgraded) == 0 &&
		len(dr.Downgraded) == 0 &&
		len(dr.NewlyParked) == 0 &&
		len(dr.NoLongerParked) == 0
}

// rank treats unknown classifications as Invalid.
func rank(c models.Classification) int {
	if r, ok := classRank[c]; ok {
		return r
	}
	return classRank[models.ClassInvalid]
}

func sortResults(rs []models.ValidationResult) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Domain < rs[j].Domain })
}

func sortChanges(cs []Change) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Domain < cs[j].Domain })
}
