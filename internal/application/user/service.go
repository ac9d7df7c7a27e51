package user

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"stockex-backend/internal/domain"
	"stockex-backend/internal/pkg/constants"
	"stockex-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service registers investors. Every user gets a portfolio funded with InitialCash.
type Service struct {
	DB          *gorm.DB
	InitialCash decimal.Decimal
	// Welcome is optional; a failed welcome mail never fails registration.
	Welcome WelcomeSender
}

type WelcomeSender interface {
	SendWelcome(ctx context.Context, to, fullname string) error
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Fullname string `json:"fullname" validate:"required,fullname"`
}

// Profile is the user together with their portfolio id and cash balance.
type Profile struct {
	User        domain.User     `json:"user"`
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	Cash        decimal.Decimal `json:"cash"`
}

// Register creates the user and their portfolio in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email := in.Email

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		Fullname:     titleCaseAndNormalize(in.Fullname),
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.Investor,
	}
	p := domain.Portfolio{Cash: s.InitialCash}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrEmailTaken
		}
		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrEmailTaken
			}
			return err
		}
		p.UserID = u.UserID
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.UserID.String()).Msg("user registered")

	if s.Welcome != nil {
		if err := s.Welcome.SendWelcome(ctx, u.Email, u.Fullname); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email failed")
		}
	}
	return &Profile{User: u, PortfolioID: p.PortfolioID, Cash: p.Cash}, nil
}

// View returns the user's profile.
func (s *Service) View(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	out := &Profile{User: u}
	var p domain.Portfolio
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	switch {
	case err == nil:
		out.PortfolioID = p.PortfolioID
		out.Cash = p.Cash
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return out, nil
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
