package allotment

import "stockex-backend/internal/domain"

// PartialFill walks the applications in a random order and gives each one a uniform
// draw from [LotSize, min(MaxPerApplicant, remaining, requested)] until the remaining
// supply is smaller than one lot. Applications not reached are not allotted.
type PartialFill struct {
	LotSize         int
	MaxPerApplicant int
}

func (PartialFill) Name() string { return PartialFillPolicy }

func (p PartialFill) Allot(totalShares int, apps []domain.Application, rng RandomSource) ([]Decision, error) {
	if err := validateInput(totalShares, p.LotSize, apps, rng); err != nil {
		return nil, err
	}
	decisions := rejectAll(apps)
	if len(apps) == 0 {
		return decisions, nil
	}

	remaining := totalShares
	for _, i := range shuffle(len(apps), rng) {
		if remaining < p.LotSize {
			break
		}
		requested := apps[i].RequestedShares
		if requested < p.LotSize {
			continue
		}
		maxAllot := min(p.MaxPerApplicant, remaining, requested)
		shares := p.LotSize + rng.Intn(maxAllot-p.LotSize+1)
		allot(&decisions[i], shares)
		remaining -= shares
	}
	return decisions, nil
}
