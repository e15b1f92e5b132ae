package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/Dosada05/brawl-tournament-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	GuildID  string `json:"guild_id"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService управляет учётными записями маршалов (организаторов турниров).
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*models.Marshal, error)
	SignIn(ctx context.Context, input SignInInput) (*models.Marshal, error)
}

type authService struct {
	marshalRepo repositories.MarshalRepository
}

func NewAuthService(marshalRepo repositories.MarshalRepository) AuthService {
	return &authService{marshalRepo: marshalRepo}
}

func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*models.Marshal, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrValidationFailed
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.GuildID == "" {
		return nil, ErrValidationFailed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	marshal := &models.Marshal{
		Email:        email,
		PasswordHash: string(hashedPassword),
		GuildID:      input.GuildID,
	}

	if err := s.marshalRepo.Create(ctx, marshal); err != nil {
		if errors.Is(err, repositories.ErrMarshalEmailConflict) {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("ошибка создания маршала: %w", err)
	}

	marshal.PasswordHash = ""
	return marshal, nil
}

func (s *authService) SignIn(ctx context.Context, input SignInInput) (*models.Marshal, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	marshal, err := s.marshalRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrMarshalNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find marshal by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(marshal.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	marshal.PasswordHash = ""
	return marshal, nil
}
