package allotment

import (
	"stockex-backend/internal/domain"

	"github.com/google/uuid"
)

// SettlementReport summarizes one committed allotment run.
type SettlementReport struct {
	RoundID          uuid.UUID  `json:"round_id"`
	StockID          uuid.UUID  `json:"stock_id"`
	Policy           string     `json:"policy"`
	TotalShares      int        `json:"total_shares"`
	AllottedShares   int        `json:"allotted_shares"`
	AllottedCount    int        `json:"allotted_count"`
	NotAllottedCount int        `json:"not_allotted_count"`
	Decisions        []Decision `json:"decisions"`
	HoldingsSettled  int        `json:"holdings_settled"`
	HoldingFailures  int        `json:"holding_failures"`
}

func newReport(round domain.IpoRound, policy string, decisions []Decision) *SettlementReport {
	r := &SettlementReport{
		RoundID:     round.RoundID,
		StockID:     round.StockID,
		Policy:      policy,
		TotalShares: round.TotalShares,
		Decisions:   decisions,
	}
	for _, d := range decisions {
		if d.Status == domain.ApplicationAllotted {
			r.AllottedCount++
			r.AllottedShares += d.AllottedShares
		} else {
			r.NotAllottedCount++
		}
	}
	return r
}
