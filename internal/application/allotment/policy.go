package allotment

import (
	"fmt"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
)

const (
	UniformLotPolicy  = "uniform_lot"
	PartialFillPolicy = "partial_fill"
)

// Decision is the outcome for one application.
type Decision struct {
	ApplicationID  uuid.UUID `json:"application_id"`
	UserID         uuid.UUID `json:"user_id"`
	Status         string    `json:"status"`
	AllottedShares int       `json:"allotted_shares"`
}

// RandomSource is the only source of randomness an allotment policy uses.
// Tests inject a seeded or scripted source to get exact outcomes.
type RandomSource interface {
	// Intn returns a uniform integer in [0, n). n is always positive.
	Intn(n int) int
}

// Policy decides which applications receive shares and how many.
// It returns exactly one decision per input application, in input order.
//
// Applications that request less than one lot are never eligible and are
// always marked not allotted. Ties in random selection are broken by the
// draw alone, so two runs with different seeds may pick different winners.
type Policy interface {
	Name() string
	Allot(totalShares int, apps []domain.Application, rng RandomSource) ([]Decision, error)
}

// NewPolicy returns the named policy.
func NewPolicy(name string, lotSize, maxPerApplicant int) (Policy, error) {
	if lotSize <= 0 {
		return nil, fmt.Errorf("%w: lot size must be positive", domain.ErrInvalidAllotmentInput)
	}
	switch name {
	case UniformLotPolicy:
		return UniformLot{LotSize: lotSize}, nil
	case PartialFillPolicy:
		if maxPerApplicant < lotSize {
			return nil, fmt.Errorf("%w: max per applicant %d below lot size %d", domain.ErrInvalidAllotmentInput, maxPerApplicant, lotSize)
		}
		return PartialFill{LotSize: lotSize, MaxPerApplicant: maxPerApplicant}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", domain.ErrInvalidAllotmentInput, name)
	}
}

func validateInput(totalShares, lotSize int, apps []domain.Application, rng RandomSource) error {
	if totalShares < 0 {
		return fmt.Errorf("%w: negative total shares %d", domain.ErrInvalidAllotmentInput, totalShares)
	}
	if lotSize <= 0 {
		return fmt.Errorf("%w: lot size must be positive", domain.ErrInvalidAllotmentInput)
	}
	if rng == nil {
		return fmt.Errorf("%w: nil random source", domain.ErrInvalidAllotmentInput)
	}
	seen := make(map[uuid.UUID]struct{}, len(apps))
	for _, a := range apps {
		if a.RequestedShares <= 0 {
			return fmt.Errorf("%w: application %s requests %d shares", domain.ErrInvalidAllotmentInput, a.ApplicationID, a.RequestedShares)
		}
		if _, dup := seen[a.ApplicationID]; dup {
			return fmt.Errorf("%w: duplicate application %s", domain.ErrInvalidAllotmentInput, a.ApplicationID)
		}
		seen[a.ApplicationID] = struct{}{}
	}
	return nil
}

// rejectAll returns a not-allotted decision for every application, in input order.
func rejectAll(apps []domain.Application) []Decision {
	out := make([]Decision, len(apps))
	for i, a := range apps {
		out[i] = Decision{
			ApplicationID: a.ApplicationID,
			UserID:        a.UserID,
			Status:        domain.ApplicationNotAllotted,
		}
	}
	return out
}

func allot(d *Decision, shares int) {
	d.Status = domain.ApplicationAllotted
	d.AllottedShares = shares
}

// shuffle returns a uniformly random permutation of [0, n) (Fisher-Yates).
func shuffle(n int, rng RandomSource) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// sample returns k distinct indices drawn uniformly from [0, n) (partial Fisher-Yates).
func sample(n, k int, rng RandomSource) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}
