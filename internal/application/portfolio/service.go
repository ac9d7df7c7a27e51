package portfolio

import (
	"context"
	"errors"
	"time"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service keeps portfolio cash and holdings consistent with buys, sells and IPO allotments.
// Each operation is atomic; the Tx variants join a caller's transaction instead.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var errAlreadySettled = errors.New("application already settled")

// ApplyBuy debits quantity*price+fee and adds the shares at a weighted average cost.
func (s *Service) ApplyBuy(ctx context.Context, userID, stockID uuid.UUID, quantity int, price, fee decimal.Decimal) (*domain.Holding, error) {
	var h *domain.Holding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		h, err = ApplyBuyTx(tx, userID, stockID, quantity, price, fee)
		return err
	})
	return h, err
}

// ApplySell credits quantity*price and removes the shares. The returned holding is nil when the position closed.
func (s *Service) ApplySell(ctx context.Context, userID, stockID uuid.UUID, quantity int, price decimal.Decimal) (*domain.Holding, error) {
	var h *domain.Holding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		h, err = ApplySellTx(tx, userID, stockID, quantity, price)
		return err
	})
	return h, err
}

// ApplyBuyTx is ApplyBuy inside tx.
func ApplyBuyTx(tx *gorm.DB, userID, stockID uuid.UUID, quantity int, price, fee decimal.Decimal) (*domain.Holding, error) {
	return buy(tx, userID, stockID, quantity, price, fee, true)
}

// ApplySellTx is ApplySell inside tx.
func ApplySellTx(tx *gorm.DB, userID, stockID uuid.UUID, quantity int, price decimal.Decimal) (*domain.Holding, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := lockPortfolio(tx, userID)
	if err != nil {
		return nil, err
	}
	var h domain.Holding
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("portfolio_id = ? AND stock_id = ?", p.PortfolioID, stockID).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInsufficientShares
		}
		return nil, err
	}
	if h.Quantity < quantity {
		return nil, domain.ErrInsufficientShares
	}

	proceeds := price.Mul(decimal.NewFromInt(int64(quantity)))
	if err := tx.Model(p).Update("cash", p.Cash.Add(proceeds)).Error; err != nil {
		return nil, err
	}

	h.Quantity -= quantity
	if h.Quantity == 0 {
		if err := tx.Delete(&h).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := tx.Model(&h).Update("quantity", h.Quantity).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// ApplyAllotment moves an allotted application's shares into the owner's portfolio at the
// round's issue price with no fee. Funds are not re-checked: eligibility is assumed to have
// been enforced when the user applied, so cash may go negative here. A settled application
// is left untouched, which makes the call safe to retry. Applications without allotted
// shares return ErrNotAllotted.
func (s *Service) ApplyAllotment(ctx context.Context, applicationID uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app domain.Application
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", applicationID).
			First(&app).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrApplicationNotFound
			}
			return err
		}
		if app.Status != domain.ApplicationAllotted || app.AllottedShares == 0 {
			return domain.ErrNotAllotted
		}
		if app.SettledAt != nil {
			return errAlreadySettled
		}

		var round domain.IpoRound
		if err := tx.Where("round_id = ?", app.RoundID).First(&round).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRoundNotFound
			}
			return err
		}

		if _, err := buy(tx, app.UserID, round.StockID, app.AllottedShares, round.IssuePrice, decimal.Zero, false); err != nil {
			return err
		}
		total := round.IssuePrice.Mul(decimal.NewFromInt(int64(app.AllottedShares)))
		if err := tx.Create(&domain.Transaction{
			UserID:   app.UserID,
			StockID:  round.StockID,
			RoundID:  &round.RoundID,
			Type:     domain.TxIpoAllotment,
			Quantity: app.AllottedShares,
			Price:    round.IssuePrice,
			Fee:      decimal.Zero,
			Total:    total,
		}).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Application{}).
			Where("application_id = ? AND settled_at IS NULL", app.ApplicationID).
			Update("settled_at", s.now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadySettled
		}
		return nil
	})
	if errors.Is(err, errAlreadySettled) {
		return nil
	}
	return err
}

func buy(tx *gorm.DB, userID, stockID uuid.UUID, quantity int, price, fee decimal.Decimal, checkFunds bool) (*domain.Holding, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := lockPortfolio(tx, userID)
	if err != nil {
		return nil, err
	}
	qty := decimal.NewFromInt(int64(quantity))
	cost := price.Mul(qty).Add(fee)
	if checkFunds && p.Cash.LessThan(cost) {
		return nil, domain.ErrInsufficientFunds
	}
	if err := tx.Model(p).Update("cash", p.Cash.Sub(cost)).Error; err != nil {
		return nil, err
	}

	var h domain.Holding
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("portfolio_id = ? AND stock_id = ?", p.PortfolioID, stockID).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h = domain.Holding{
			PortfolioID:  p.PortfolioID,
			StockID:      stockID,
			Quantity:     quantity,
			AveragePrice: price,
		}
		if err := tx.Create(&h).Error; err != nil {
			return nil, err
		}
		return &h, nil
	}
	if err != nil {
		return nil, err
	}

	h.AveragePrice = WeightedAverage(h.Quantity, h.AveragePrice, quantity, price)
	h.Quantity += quantity
	if err := tx.Model(&h).Updates(map[string]interface{}{
		"quantity":      h.Quantity,
		"average_price": h.AveragePrice,
	}).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// WeightedAverage returns (oldQty*oldAvg + buyQty*buyPrice) / (oldQty+buyQty), rounded to 4 places.
func WeightedAverage(oldQty int, oldAvg decimal.Decimal, buyQty int, buyPrice decimal.Decimal) decimal.Decimal {
	totalQty := oldQty + buyQty
	if totalQty == 0 {
		return decimal.Zero
	}
	cost := oldAvg.Mul(decimal.NewFromInt(int64(oldQty))).Add(buyPrice.Mul(decimal.NewFromInt(int64(buyQty))))
	return cost.DivRound(decimal.NewFromInt(int64(totalQty)), 4)
}

func lockPortfolio(tx *gorm.DB, userID uuid.UUID) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoPortfolio
		}
		return nil, err
	}
	return &p, nil
}

// HoldingView is a holding with its stock's reference data.
type HoldingView struct {
	domain.Holding
	Symbol       string          `json:"symbol"`
	CompanyName  string          `json:"company_name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
}

// View is a user's cash and positions.
type View struct {
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Cash        decimal.Decimal `json:"cash"`
	Holdings    []HoldingView   `json:"holdings"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// View returns the user's portfolio with holdings valued at current prices.
func (s *Service) View(ctx context.Context, userID uuid.UUID) (*View, error) {
	var p domain.Portfolio
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoPortfolio
		}
		return nil, err
	}
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).Where("portfolio_id = ?", p.PortfolioID).Order("created_at ASC").Find(&holdings).Error; err != nil {
		return nil, err
	}

	stockIDs := make([]uuid.UUID, 0, len(holdings))
	for _, h := range holdings {
		stockIDs = append(stockIDs, h.StockID)
	}
	stocks := map[uuid.UUID]domain.Stock{}
	if len(stockIDs) > 0 {
		var list []domain.Stock
		if err := s.DB.WithContext(ctx).Where("stock_id IN ?", stockIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for _, st := range list {
			stocks[st.StockID] = st
		}
	}

	out := &View{
		PortfolioID: p.PortfolioID,
		UserID:      p.UserID,
		Cash:        p.Cash,
		Holdings:    make([]HoldingView, 0, len(holdings)),
		MarketValue: decimal.Zero,
	}
	for _, h := range holdings {
		st := stocks[h.StockID]
		value := st.CurrentPrice.Mul(decimal.NewFromInt(int64(h.Quantity)))
		out.Holdings = append(out.Holdings, HoldingView{
			Holding:      h,
			Symbol:       st.Symbol,
			CompanyName:  st.CompanyName,
			CurrentPrice: st.CurrentPrice,
			MarketValue:  value,
		})
		out.MarketValue = out.MarketValue.Add(value)
	}
	return out, nil
}
