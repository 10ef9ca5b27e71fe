package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

func (r *repository) CreateActivity(ctx context.Context, a model.UserActivity) error {
	_, err := r.exec(ctx, qb.Insert(activitiesTableName).
		Columns("user_id", "action", "entity_type", "entity_id", "description", "ip_address", "user_agent", "timestamp").
		Values(a.UserID, a.Action, nullIfEmpty(a.EntityType), a.EntityID, nullIfEmpty(a.Description),
			nullIfEmpty(a.IPAddress), nullIfEmpty(a.UserAgent), a.Timestamp))
	return err
}

func (r *repository) ListActivities(ctx context.Context, filter model.ActivityFilter, page model.PageRequest) ([]model.UserActivity, int64, error) {
	countQ := qb.Select("count(*)").From(activitiesTableName + " ua")
	listQ := qb.Select(
		"ua.id", "ua.user_id", "u.username", "ua.action",
		"COALESCE(ua.entity_type, '') AS entity_type", "ua.entity_id",
		"COALESCE(ua.description, '') AS description",
		"COALESCE(ua.ip_address, '') AS ip_address",
		"COALESCE(ua.user_agent, '') AS user_agent",
		"ua.timestamp",
	).
		From(activitiesTableName + " ua").
		Join(usersTableName + " u ON u.id = ua.user_id")
	if filter.UserID != nil {
		countQ = countQ.Where(sq.Eq{"ua.user_id": *filter.UserID})
		listQ = listQ.Where(sq.Eq{"ua.user_id": *filter.UserID})
	}

	total, err := r.count(ctx, countQ)
	if err != nil {
		return nil, 0, err
	}
	var activities []model.UserActivity
	err = r.selectAll(ctx, &activities, listQ.
		OrderBy("ua.timestamp DESC", "ua.id DESC").
		Limit(uint64(page.Size)).
		Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
