package trading

import (
	"context"
	"errors"

	"stockex-backend/internal/application/portfolio"
	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service executes market orders at the stock's current price. Each order records a
// Transaction and settles the portfolio in the same database transaction.
type Service struct {
	DB      *gorm.DB
	FeeRate decimal.Decimal
}

// Result is the settled order.
type Result struct {
	Transaction domain.Transaction `json:"transaction"`
	Holding     *domain.Holding    `json:"holding"`
}

// Buy purchases quantity shares of a listed stock. fee = price * quantity * FeeRate.
func (s *Service) Buy(ctx context.Context, userID, stockID uuid.UUID, quantity int) (*Result, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := listedStock(tx, stockID)
		if err != nil {
			return err
		}
		qty := decimal.NewFromInt(int64(quantity))
		gross := stock.CurrentPrice.Mul(qty)
		fee := gross.Mul(s.FeeRate).Round(4)

		h, err := portfolio.ApplyBuyTx(tx, userID, stockID, quantity, stock.CurrentPrice, fee)
		if err != nil {
			return err
		}
		out.Holding = h
		out.Transaction = domain.Transaction{
			UserID:   userID,
			StockID:  stockID,
			Type:     domain.TxBuy,
			Quantity: quantity,
			Price:    stock.CurrentPrice,
			Fee:      fee,
			Total:    gross.Add(fee),
		}
		return tx.Create(&out.Transaction).Error
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("user_id", userID.String()).Str("stock_id", stockID.String()).Int("quantity", quantity).
		Str("total", out.Transaction.Total.String()).Msg("trading: buy settled")
	return &out, nil
}

// Sell disposes of quantity shares at the current price. Holding is nil when the position closed.
func (s *Service) Sell(ctx context.Context, userID, stockID uuid.UUID, quantity int) (*Result, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := listedStock(tx, stockID)
		if err != nil {
			return err
		}
		h, err := portfolio.ApplySellTx(tx, userID, stockID, quantity, stock.CurrentPrice)
		if err != nil {
			return err
		}
		out.Holding = h
		out.Transaction = domain.Transaction{
			UserID:   userID,
			StockID:  stockID,
			Type:     domain.TxSell,
			Quantity: quantity,
			Price:    stock.CurrentPrice,
			Fee:      decimal.Zero,
			Total:    stock.CurrentPrice.Mul(decimal.NewFromInt(int64(quantity))),
		}
		return tx.Create(&out.Transaction).Error
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("user_id", userID.String()).Str("stock_id", stockID.String()).Int("quantity", quantity).
		Str("total", out.Transaction.Total.String()).Msg("trading: sell settled")
	return &out, nil
}

func listedStock(tx *gorm.DB, stockID uuid.UUID) (*domain.Stock, error) {
	var st domain.Stock
	if err := tx.Where("stock_id = ?", stockID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, err
	}
	if !st.IsListed {
		return nil, domain.ErrStockNotListed
	}
	return &st, nil
}
