package repository

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

var memberColumns = []string{
	"id", "first_name", "last_name", "email",
	"COALESCE(phone, '') AS phone",
	"COALESCE(address, '') AS address",
	"is_active", "created_at",
}

func (r *repository) ListMembers(ctx context.Context, page model.PageRequest) ([]model.Member, int64, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(membersTableName))
	if err != nil {
		return nil, 0, err
	}
	var members []model.Member
	err = r.selectAll(ctx, &members, qb.Select(memberColumns...).
		From(membersTableName).
		OrderBy("last_name", "first_name", "id").
		Limit(uint64(page.Size)).
		Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *repository) GetMember(ctx context.Context, id int64) (model.Member, error) {
	var member model.Member
	if err := r.get(ctx, &member, qb.Select(memberColumns...).From(membersTableName).Where(sq.Eq{"id": id})); err != nil {
		return model.Member{}, notFound(err, "Member", id)
	}
	return member, nil
}

func (r *repository) GetMemberForUpdate(ctx context.Context, id int64) (model.Member, error) {
	var member model.Member
	q := qb.Select(memberColumns...).From(membersTableName).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE")
	if err := r.get(ctx, &member, q); err != nil {
		return model.Member{}, notFound(err, "Member", id)
	}
	return member, nil
}

func (r *repository) CreateMember(ctx context.Context, member model.Member) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(membersTableName).
		Columns("first_name", "last_name", "email", "phone", "address", "is_active").
		Values(member.FirstName, member.LastName, strings.ToLower(member.Email),
			nullIfEmpty(member.Phone), nullIfEmpty(member.Address), member.IsActive))
	if err != nil {
		return 0, mapPgErr(err, "Member")
	}
	return id, nil
}

func (r *repository) UpdateMember(ctx context.Context, member model.Member) error {
	n, err := r.exec(ctx, qb.Update(membersTableName).
		Set("first_name", member.FirstName).
		Set("last_name", member.LastName).
		Set("email", strings.ToLower(member.Email)).
		Set("phone", nullIfEmpty(member.Phone)).
		Set("address", nullIfEmpty(member.Address)).
		Set("is_active", member.IsActive).
		Where(sq.Eq{"id": member.ID}))
	return mustAffect(n, err, "Member", member.ID)
}

func (r *repository) DeleteMember(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, qb.Delete(membersTableName).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "Member", id)
}

func (r *repository) MemberEmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, membersTableName, sq.Eq{"email": strings.ToLower(email)}, excludeID)
}

func (r *repository) CountActiveMembers(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(membersTableName).Where(sq.Eq{"is_active": true}))
}
