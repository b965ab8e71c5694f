package service

import (
	"context"
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	limiter  LoginLimiter
}

// NewAuthService wires password login. limiter may be nil.
func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, limiter LoginLimiter) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		limiter:  limiter,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, email)
		if err != nil {
			logger.Warn("Login limiter unavailable", "error", err)
		} else if !ok {
			return "", nil, domain.ErrRateLimited
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, []string{string(user.Role)})
	if err != nil {
		return "", nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			logger.Warn("Failed to reset login attempts", "error", err)
		}
	}
	logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return token, user, nil
}

func (s *authService) GetUser(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
