package allotment

import (
	"testing"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"pgregory.net/rapid"
)

func drawPolicy(t *rapid.T) (Policy, int, int) {
	lot := rapid.IntRange(1, 25).Draw(t, "lot")
	maxPer := rapid.IntRange(lot, lot*4).Draw(t, "maxPer")
	name := rapid.SampledFrom([]string{UniformLotPolicy, PartialFillPolicy}).Draw(t, "policy")
	p, err := NewPolicy(name, lot, maxPer)
	if err != nil {
		t.Fatalf("NewPolicy(%q, %d, %d): %v", name, lot, maxPer, err)
	}
	return p, lot, maxPer
}

func drawApps(t *rapid.T) []domain.Application {
	n := rapid.IntRange(0, 150).Draw(t, "applications")
	apps := make([]domain.Application, n)
	for i := range apps {
		apps[i] = domain.Application{
			ApplicationID:   uuid.New(),
			UserID:          uuid.New(),
			RequestedShares: rapid.IntRange(1, 120).Draw(t, "requested"),
			Status:          domain.ApplicationPending,
		}
	}
	return apps
}

func TestProperty_AllotmentInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p, lot, maxPer := drawPolicy(t)
		apps := drawApps(t)
		total := rapid.IntRange(0, 3000).Draw(t, "totalShares")
		seed := rapid.Int64Range(1, 1<<40).Draw(t, "seed")

		ds, err := p.Allot(total, apps, NewRandomSource(seed))
		if err != nil {
			t.Fatalf("Allot: %v", err)
		}
		if len(ds) != len(apps) {
			t.Fatalf("got %d decisions for %d applications", len(ds), len(apps))
		}

		seen := make(map[uuid.UUID]bool, len(ds))
		sum := 0
		for i, d := range ds {
			if d.ApplicationID != apps[i].ApplicationID {
				t.Fatalf("decision %d is for %s, want %s", i, d.ApplicationID, apps[i].ApplicationID)
			}
			if seen[d.ApplicationID] {
				t.Fatalf("application %s decided twice", d.ApplicationID)
			}
			seen[d.ApplicationID] = true

			switch d.Status {
			case domain.ApplicationAllotted:
				if d.AllottedShares < lot {
					t.Fatalf("allotted %d below lot %d", d.AllottedShares, lot)
				}
				if d.AllottedShares > apps[i].RequestedShares {
					t.Fatalf("allotted %d above requested %d", d.AllottedShares, apps[i].RequestedShares)
				}
				if p.Name() == PartialFillPolicy && d.AllottedShares > maxPer {
					t.Fatalf("allotted %d above per-applicant bound %d", d.AllottedShares, maxPer)
				}
				if p.Name() == UniformLotPolicy && d.AllottedShares != lot {
					t.Fatalf("uniform lot allotted %d, want %d", d.AllottedShares, lot)
				}
			case domain.ApplicationNotAllotted:
				if d.AllottedShares != 0 {
					t.Fatalf("not allotted decision carries %d shares", d.AllottedShares)
				}
			default:
				t.Fatalf("unexpected status %q", d.Status)
			}
			sum += d.AllottedShares
		}
		if sum > total {
			t.Fatalf("allotted %d shares out of %d", sum, total)
		}
	})
}

func TestProperty_SameSeedSameDecisions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p, _, _ := drawPolicy(t)
		apps := drawApps(t)
		total := rapid.IntRange(0, 3000).Draw(t, "totalShares")
		seed := rapid.Int64Range(1, 1<<40).Draw(t, "seed")

		a, err := p.Allot(total, apps, NewRandomSource(seed))
		if err != nil {
			t.Fatalf("Allot: %v", err)
		}
		b, err := p.Allot(total, apps, NewRandomSource(seed))
		if err != nil {
			t.Fatalf("Allot: %v", err)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("decision %d differs between runs: %+v vs %+v", i, a[i], b[i])
			}
		}
	})
}

func TestProperty_UniformLotFillsCapacity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lot := rapid.IntRange(1, 25).Draw(t, "lot")
		apps := drawApps(t)
		total := rapid.IntRange(0, 3000).Draw(t, "totalShares")

		ds, err := UniformLot{LotSize: lot}.Allot(total, apps, NewRandomSource(1))
		if err != nil {
			t.Fatalf("Allot: %v", err)
		}
		eligible := 0
		for _, a := range apps {
			if a.RequestedShares >= lot {
				eligible++
			}
		}
		want := min(eligible, total/lot)
		if got := countStatus(ds, domain.ApplicationAllotted); got != want {
			t.Fatalf("allotted %d applications, want %d", got, want)
		}
	})
}
