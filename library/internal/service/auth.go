package service

import (
	"context"
	"errors"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"go.uber.org/zap"
)

const tokenTypeBearer = "Bearer"

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.LoginResponse{}, errs.ErrBadCredentials
		}
		return model.LoginResponse{}, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return model.LoginResponse{}, errs.ErrBadCredentials
	}
	if !user.IsActive {
		return model.LoginResponse{}, errs.ErrInactiveUser
	}

	resp, err := s.issue(user)
	if err != nil {
		return model.LoginResponse{}, err
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		s.log.Warn("touch last login", zap.Int64("userID", user.ID), zap.Error(err))
	}
	s.logActivityFor(ctx, user.ID, "LOGIN", "User", user.ID, "User logged in")
	return resp, nil
}

// Refresh exchanges a valid refresh token of an active user for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (model.LoginResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrTokenType) {
			return model.LoginResponse{}, errs.Unauthorized("Invalid token type")
		}
		return model.LoginResponse{}, errs.Unauthorized("Invalid refresh token")
	}
	user, err := s.repo.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.LoginResponse{}, errs.Unauthorized("Invalid refresh token")
		}
		return model.LoginResponse{}, err
	}
	if !user.IsActive {
		return model.LoginResponse{}, errs.ErrInactiveUser
	}
	return s.issue(user)
}

func (s *Service) issue(user model.User) (model.LoginResponse, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Username, user.Role)
	if err != nil {
		return model.LoginResponse{}, err
	}
	return model.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    pair.ExpiresAt,
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
	}, nil
}
