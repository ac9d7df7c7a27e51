package allotment

import "stockex-backend/internal/domain"

// UniformLot gives every winner exactly one lot. With capacity = totalShares / LotSize,
// all eligible applications win when they fit; otherwise a uniform random subset of
// size capacity wins. The requested amount beyond one lot is ignored.
type UniformLot struct {
	LotSize int
}

func (UniformLot) Name() string { return UniformLotPolicy }

func (p UniformLot) Allot(totalShares int, apps []domain.Application, rng RandomSource) ([]Decision, error) {
	if err := validateInput(totalShares, p.LotSize, apps, rng); err != nil {
		return nil, err
	}
	decisions := rejectAll(apps)

	eligible := make([]int, 0, len(apps))
	for i, a := range apps {
		if a.RequestedShares >= p.LotSize {
			eligible = append(eligible, i)
		}
	}

	capacity := totalShares / p.LotSize
	if len(eligible) <= capacity {
		for _, i := range eligible {
			allot(&decisions[i], p.LotSize)
		}
		return decisions, nil
	}
	for _, k := range sample(len(eligible), capacity, rng) {
		allot(&decisions[eligible[k]], p.LotSize)
	}
	return decisions, nil
}
