package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/auth"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/models"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

// UserService handles registration and credential checks
type UserService struct {
	repo repository.AuctionDB
}

// NewUserService creates a new UserService instance
func NewUserService(repo repository.AuctionDB) *UserService {
	return &UserService{repo: repo}
}

// Register creates a new account. The password must match its confirmation
// and the username must be unused; violations come back as FieldErrors or
// ErrUsernameTaken.
func (s *UserService) Register(ctx context.Context, username, email, password, confirmation string) (models.User, error) {
	fieldErrs := auctionerrors.FieldErrors{}
	if username == "" {
		fieldErrs["username"] = "Username is required."
	}
	if password == "" {
		fieldErrs["password"] = "Password is required."
	}
	if password != confirmation {
		fieldErrs["confirmation"] = "Passwords must match."
	}
	if len(fieldErrs) > 0 {
		return models.User{}, fieldErrs
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := models.User{
		UserID:       utils.GenerateID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, auctionerrors.ErrUsernameTaken) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("service: failed to create user %s: %w", username, err)
	}

	return u, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords both
// yield ErrInvalidCredentials so account existence is not leaked.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return models.User{}, auctionerrors.ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("service: failed to look up user %s: %w", username, err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return models.User{}, auctionerrors.ErrInvalidCredentials
	}

	return u, nil
}

// GetByID returns the user with the given ID.
func (s *UserService) GetByID(ctx context.Context, userID string) (models.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", userID, err)
	}
	return u, nil
}
