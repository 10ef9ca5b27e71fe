package service

import (
	"context"
	"fmt"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/auth"
)

func (s *Service) ListUsers(ctx context.Context, role auth.Role) ([]model.User, error) {
	if role != "" && !role.Valid() {
		return nil, errs.Validation("unknown role %s", role)
	}
	users, err := s.repo.ListUsers(ctx, role)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, in model.UserCreate) (model.User, error) {
	if err := s.checkUserUnique(ctx, in.Username, in.Email, 0); err != nil {
		return model.User{}, err
	}
	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	id, err := s.repo.CreateUser(ctx, model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		Role:         in.Role,
		IsActive:     boolOr(in.IsActive, true),
	})
	if err != nil {
		return model.User{}, err
	}
	s.logActivity(ctx, "CREATE_USER", "User", id, fmt.Sprintf("Created user: %s (%s)", in.Username, in.Role))
	return s.repo.GetUser(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id int64, in model.UserUpdate) (model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if err := s.checkUserUnique(ctx, in.Username, in.Email, id); err != nil {
		return model.User{}, err
	}
	user.Username = in.Username
	user.Email = in.Email
	user.Role = in.Role
	user.IsActive = boolOr(in.IsActive, user.IsActive)
	if in.Password != "" {
		if user.PasswordHash, err = auth.HashPassword(in.Password, s.cfg.BcryptCost); err != nil {
			return model.User{}, err
		}
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return model.User{}, err
	}
	s.logActivity(ctx, "UPDATE_USER", "User", id, fmt.Sprintf("Updated user: %s", in.Username))
	return s.repo.GetUser(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if p, ok := auth.GetAuthContext(ctx); ok && p.UserID == id {
		return errs.Business("Cannot delete your own account")
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logActivity(ctx, "DELETE_USER", "User", id, fmt.Sprintf("Deleted user: %s", user.Username))
	return nil
}

func (s *Service) DeactivateUser(ctx context.Context, id int64) (model.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	user.IsActive = false
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return model.User{}, err
	}
	s.logActivity(ctx, "DEACTIVATE_USER", "User", id, fmt.Sprintf("Deactivated user: %s", user.Username))
	return user, nil
}

func (s *Service) checkUserUnique(ctx context.Context, username, email string, excludeID int64) error {
	exists, err := s.repo.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return errs.Conflict("Username %s is already taken", username)
	}
	exists, err = s.repo.UserEmailExists(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return errs.Conflict("Email %s is already in use", email)
	}
	return nil
}
