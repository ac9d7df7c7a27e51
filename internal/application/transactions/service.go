package transactions

import (
	"context"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// FormattedTx is a Transaction joined with its stock symbol.
type FormattedTx struct {
	TxID      uuid.UUID       `json:"tx_id"`
	Type      string          `json:"type"`
	StockID   uuid.UUID       `json:"stock_id"`
	Symbol    *string         `json:"symbol"`
	RoundID   *uuid.UUID      `json:"round_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fee       decimal.Decimal `json:"fee"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt interface{}     `json:"created_at"`
}

// List returns the user's transactions, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]FormattedTx, error) {
	var txs []domain.Transaction
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []FormattedTx{}, nil
	}

	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(txs))
	for _, tx := range txs {
		if !seen[tx.StockID] {
			seen[tx.StockID] = true
			ids = append(ids, tx.StockID)
		}
	}
	var stocks []domain.Stock
	if err := s.DB.WithContext(ctx).Where("stock_id IN ?", ids).Select("stock_id, symbol").Find(&stocks).Error; err != nil {
		return nil, err
	}
	symbols := make(map[uuid.UUID]string, len(stocks))
	for _, st := range stocks {
		symbols[st.StockID] = st.Symbol
	}

	out := make([]FormattedTx, len(txs))
	for i, tx := range txs {
		ft := FormattedTx{
			TxID:      tx.TxID,
			Type:      tx.Type,
			StockID:   tx.StockID,
			RoundID:   tx.RoundID,
			Quantity:  tx.Quantity,
			Price:     tx.Price,
			Fee:       tx.Fee,
			Total:     tx.Total,
			CreatedAt: tx.CreatedAt,
		}
		if sym, ok := symbols[tx.StockID]; ok {
			ft.Symbol = &sym
		}
		out[i] = ft
	}
	return out, nil
}
