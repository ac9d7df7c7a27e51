package auth

import (
	"context"
	"errors"
	"strings"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is what the session stores under "user" and what /me returns.
type SessionUser struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserFinder abstracts credential lookup so handlers can be tested without a database.
type UserFinder interface {
	FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error)
}

type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error) {
	return LoginUser(g.DB.WithContext(ctx), LoginInput{Email: email, Password: password})
}

// LoginUser looks the user up by email and checks the bcrypt hash.
// Unknown email and wrong password return the same error.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// VerifyUser validates the session user and returns it for /me.
func VerifyUser(sessionUser interface{}) (*SessionUser, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUser{
		UserID:   userID,
		Fullname: str(m["fullname"]),
		Email:    str(m["email"]),
		Role:     str(m["role"]),
	}, nil
}

// UserID extracts and parses the session user's id.
func UserID(sessionUser interface{}) (uuid.UUID, error) {
	su, err := VerifyUser(sessionUser)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(su.UserID)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return id, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
