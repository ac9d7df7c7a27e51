package stocks

import (
	"context"
	"errors"
	"strings"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateStockInput struct {
	Symbol       string          `json:"symbol" validate:"required,alphanum,max=12"`
	CompanyName  string          `json:"company_name" validate:"required,max=200"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// Create registers an unlisted stock. It becomes tradable when its IPO is allotted.
func (s *Service) Create(ctx context.Context, in CreateStockInput) (*domain.Stock, error) {
	st := &domain.Stock{
		Symbol:       strings.ToUpper(strings.TrimSpace(in.Symbol)),
		CompanyName:  strings.TrimSpace(in.CompanyName),
		CurrentPrice: in.CurrentPrice,
	}
	if err := s.DB.WithContext(ctx).Create(st).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrSymbolTaken
		}
		return nil, err
	}
	return st, nil
}

func (s *Service) Get(ctx context.Context, stockID uuid.UUID) (*domain.Stock, error) {
	var st domain.Stock
	if err := s.DB.WithContext(ctx).Where("stock_id = ?", stockID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, err
	}
	return &st, nil
}

// List returns stocks by symbol. listedOnly hides stocks still in their IPO.
func (s *Service) List(ctx context.Context, listedOnly bool) ([]domain.Stock, error) {
	q := s.DB.WithContext(ctx).Order("symbol ASC")
	if listedOnly {
		q = q.Where("is_listed = ?", true)
	}
	out := []domain.Stock{}
	return out, q.Find(&out).Error
}
