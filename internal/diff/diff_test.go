package diff

import (
	"errors"
	"testing"

	"github.com/hakim/domainvet/internal/models"
)

func result(domain string, class models.Classification, parked bool) models.ValidationResult {
	return models.ValidationResult{Domain: domain, Classification: class, ParkedDomain: parked}
}

func TestComputeDiff(t *testing.T) {
	previous := &Snapshot{RunID: "prev", Results: []models.ValidationResult{
		result("stable.com", models.ClassValid, false),
		result("better.com", models.ClassInvalid, false),
		result("worse.com", models.ClassValid, false),
		result("parkednow.com", models.ClassValid, false),
		result("unparked.com", models.ClassInvalid, true),
		result("gone.com", models.ClassRisky, false),
	}}
	current := &Snapshot{RunID: "curr", Results: []models.ValidationResult{
		result("stable.com", models.ClassValid, false),
		result("better.com", models.ClassRisky, false),
		result("worse.com", models.ClassInvalid, false),
		result("parkednow.com", models.ClassInvalid, true),
		result("unparked.com", models.ClassInvalid, false),
		result("fresh.com", models.ClassValid, false),
		result("afresh.com", models.ClassValid, false),
	}}

	dr := ComputeDiff(current, previous)

	if dr.CurrentRunID != "curr" || dr.PreviousRunID != "prev" {
		t.Fatalf("run ids = %q, %q", dr.CurrentRunID, dr.PreviousRunID)
	}
	if len(dr.NewDomains) != 2 || dr.NewDomains[0].Domain != "afresh.com" {
		t.Fatalf("NewDomains = %+v", dr.NewDomains)
	}
	if len(dr.RemovedDomains) != 1 || dr.RemovedDomains[0].Domain != "gone.com" {
		t.Fatalf("RemovedDomains = %+v", dr.RemovedDomains)
	}
	if len(dr.Upgraded) != 1 || dr.Upgraded[0].Domain != "better.com" {
		t.Fatalf("Upgraded = %+v", dr.Upgraded)
	}
	if len(dr.Downgraded) != 2 || dr.Downgraded[0].Domain != "parkednow.com" || dr.Downgraded[1].Domain != "worse.com" {
		t.Fatalf("Downgraded = %+v", dr.Downgraded)
	}
	if len(dr.NewlyParked) != 1 || dr.NewlyParked[0].Domain != "parkednow.com" {
		t.Fatalf("NewlyParked = %+v", dr.NewlyParked)
	}
	if len(dr.NoLongerParked) != 1 || dr.NoLongerParked[0].Domain != "unparked.com" {
		t.Fatalf("NoLongerParked = %+v", dr.NoLongerParked)
	}
	if dr.CurrentSummary.Total != 7 || dr.PreviousSummary.Total != 6 {
		t.Fatalf("summaries = %+v / %+v", dr.CurrentSummary, dr.PreviousSummary)
	}
	if dr.IsEmpty() {
		t.Fatal("diff should not be empty")
	}
}

func TestComputeDiffNoPreviousRun(t *testing.T) {
	current := &Snapshot{Results: []models.ValidationResult{result("a.com", models.ClassValid, false)}}
	dr := ComputeDiff(current, &Snapshot{})

	if len(dr.NewDomains) != 1 || dr.RemovedDomains == nil || dr.Upgraded == nil {
		t.Fatalf("got %+v", dr)
	}
}

func TestComputeDiffIdentical(t *testing.T) {
	rs := []models.ValidationResult{result("a.com", models.ClassValid, false), result("b.com", models.ClassInvalid, true)}
	dr := ComputeDiff(&Snapshot{Results: rs}, &Snapshot{Results: rs})
	if !dr.IsEmpty() {
		t.Fatalf("identical runs produced %+v", dr)
	}
}

type loaderFunc func(string) ([]models.ValidationResult, error)

func (f loaderFunc) GetResults(id string) ([]models.ValidationResult, error) { return f(id) }

func TestLoadSnapshot(t *testing.T) {
	ok := loaderFunc(func(id string) ([]models.ValidationResult, error) {
		return []models.ValidationResult{result(id+".com", models.ClassValid, false)}, nil
	})
	snap, err := LoadSnapshot(ok, "run1")
	if err != nil || snap.RunID != "run1" || len(snap.Results) != 1 {
		t.Fatalf("LoadSnapshot = %+v, %v", snap, err)
	}

	sentinel := errors.New("not found")
	bad := loaderFunc(func(string) ([]models.ValidationResult, error) { return nil, sentinel })
	if _, err := LoadSnapshot(bad, "x"); !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapped sentinel", err)
	}
}
