package user

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/auth"
	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
)

// Tests Register
func TestUserService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewUserService(mockRepo)
	ctx := context.Background()

	t.Run("password_mismatch_creates_no_user", func(t *testing.T) {
		// No CreateUser expectation: the repo must not be touched.
		_, err := service.Register(ctx, "harry", "h@example.com", "secret", "different")
		fieldErrs, ok := auctionerrors.AsFieldErrors(err)
		require.True(t, ok)
		require.Contains(t, fieldErrs, "confirmation")
	})

	t.Run("empty_username", func(t *testing.T) {
		_, err := service.Register(ctx, "", "h@example.com", "secret", "secret")
		fieldErrs, ok := auctionerrors.AsFieldErrors(err)
		require.True(t, ok)
		require.Contains(t, fieldErrs, "username")
	})

	t.Run("empty_password", func(t *testing.T) {
		_, err := service.Register(ctx, "harry", "h@example.com", "", "")
		fieldErrs, ok := auctionerrors.AsFieldErrors(err)
		require.True(t, ok)
		require.Contains(t, fieldErrs, "password")
	})

	t.Run("duplicate_username", func(t *testing.T) {
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			Return(auctionerrors.ErrUsernameTaken)

		_, err := service.Register(ctx, "harry", "h@example.com", "secret", "secret")
		require.True(t, errors.Is(err, auctionerrors.ErrUsernameTaken))
	})

	t.Run("valid_registration", func(t *testing.T) {
		var stored model.User
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) error {
				stored = u
				return nil
			})

		u, err := service.Register(ctx, "harry", "h@example.com", "secret", "secret")
		require.NoError(t, err)
		require.Equal(t, "harry", u.Username)
		require.NotEmpty(t, u.UserID)
		require.NotEqual(t, "secret", stored.PasswordHash, "password must not be stored in plaintext")
		require.True(t, auth.CheckPassword(stored.PasswordHash, "secret"))
	})
}

// Tests Login
func TestUserService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewUserService(mockRepo)
	ctx := context.Background()

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	account := model.User{UserID: "user1", Username: "harry", PasswordHash: hash}

	t.Run("unknown_user", func(t *testing.T) {
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "nobody").
			Return(model.User{}, auctionerrors.ErrUserNotFound)

		_, err := service.Login(ctx, "nobody", "whatever")
		require.True(t, errors.Is(err, auctionerrors.ErrInvalidCredentials),
			"unknown users must get the same error as wrong passwords")
	})

	t.Run("wrong_password", func(t *testing.T) {
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "harry").Return(account, nil)

		_, err := service.Login(ctx, "harry", "not-the-password")
		require.True(t, errors.Is(err, auctionerrors.ErrInvalidCredentials))
	})

	t.Run("valid_credentials", func(t *testing.T) {
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "harry").Return(account, nil)

		u, err := service.Login(ctx, "harry", "secret")
		require.NoError(t, err)
		require.Equal(t, "user1", u.UserID)
	})
}
