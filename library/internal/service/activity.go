package service

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
)

func (s *Service) ListActivities(ctx context.Context, page model.PageRequest) (model.Page[model.UserActivity], error) {
	page = page.Normalize()
	activities, total, err := s.repo.ListActivities(ctx, model.ActivityFilter{}, page)
	if err != nil {
		return model.Page[model.UserActivity]{}, err
	}
	return model.NewPage(activities, page, total), nil
}

func (s *Service) ListUserActivities(ctx context.Context, userID int64, page model.PageRequest) (model.Page[model.UserActivity], error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return model.Page[model.UserActivity]{}, err
	}
	page = page.Normalize()
	activities, total, err := s.repo.ListActivities(ctx, model.ActivityFilter{UserID: &userID}, page)
	if err != nil {
		return model.Page[model.UserActivity]{}, err
	}
	return model.NewPage(activities, page, total), nil
}
