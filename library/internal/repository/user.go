package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{
	"id", "username", "password_hash", "email", "role", "is_active", "created_at", "last_login",
}

func (r *repository) ListUsers(ctx context.Context, role auth.Role) ([]model.User, error) {
	q := qb.Select(userColumns...).From(usersTableName).OrderBy("username")
	if role != "" {
		q = q.Where(sq.Eq{"role": role})
	}
	var users []model.User
	err := r.selectAll(ctx, &users, q)
	return users, err
}

func (r *repository) GetUser(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, qb.Select(userColumns...).From(usersTableName).Where(sq.Eq{"id": id})); err != nil {
		return model.User{}, notFound(err, "User", id)
	}
	return user, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, qb.Select(userColumns...).From(usersTableName).Where(sq.Eq{"username": username})); err != nil {
		return model.User{}, notFound(err, "User", username)
	}
	return user, nil
}

func (r *repository) CreateUser(ctx context.Context, user model.User) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(usersTableName).
		Columns("username", "password_hash", "email", "role", "is_active").
		Values(user.Username, user.PasswordHash, strings.ToLower(user.Email), string(user.Role), user.IsActive))
	if err != nil {
		return 0, mapPgErr(err, "User")
	}
	return id, nil
}

func (r *repository) UpdateUser(ctx context.Context, user model.User) error {
	n, err := r.exec(ctx, qb.Update(usersTableName).
		Set("username", user.Username).
		Set("password_hash", user.PasswordHash).
		Set("email", strings.ToLower(user.Email)).
		Set("role", string(user.Role)).
		Set("is_active", user.IsActive).
		Where(sq.Eq{"id": user.ID}))
	return mustAffect(n, err, "User", user.ID)
}

func (r *repository) DeleteUser(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, qb.Delete(usersTableName).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "User", id)
}

func (r *repository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, usersTableName, sq.Eq{"username": username}, excludeID)
}

func (r *repository) UserEmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, usersTableName, sq.Eq{"email": strings.ToLower(email)}, excludeID)
}

func (r *repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	n, err := r.exec(ctx, qb.Update(usersTableName).Set("last_login", at).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "User", id)
}
