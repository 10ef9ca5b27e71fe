package repository

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

func publisherSelect() sq.SelectBuilder {
	return qb.Select(
		"p.id", "p.name",
		"COALESCE(p.address, '') AS address",
		"COALESCE(p.website, '') AS website",
		"p.created_at",
		"(SELECT count(*) FROM books b WHERE b.publisher_id = p.id) AS book_count",
	).From(publishersTableName + " p")
}

func (r *repository) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	var publishers []model.Publisher
	err := r.selectAll(ctx, &publishers, publisherSelect().OrderBy("p.name"))
	return publishers, err
}

func (r *repository) SearchPublishers(ctx context.Context, name string) ([]model.Publisher, error) {
	var publishers []model.Publisher
	err := r.selectAll(ctx, &publishers, publisherSelect().
		Where(sq.ILike{"p.name": "%" + name + "%"}).
		OrderBy("p.name"))
	return publishers, err
}

func (r *repository) GetPublisher(ctx context.Context, id int64) (model.Publisher, error) {
	var publisher model.Publisher
	if err := r.get(ctx, &publisher, publisherSelect().Where(sq.Eq{"p.id": id})); err != nil {
		return model.Publisher{}, notFound(err, "Publisher", id)
	}
	return publisher, nil
}

func (r *repository) CreatePublisher(ctx context.Context, publisher model.Publisher) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(publishersTableName).
		Columns("name", "address", "website").
		Values(publisher.Name, nullIfEmpty(publisher.Address), nullIfEmpty(publisher.Website)))
	if err != nil {
		return 0, mapPgErr(err, "Publisher")
	}
	return id, nil
}

func (r *repository) UpdatePublisher(ctx context.Context, publisher model.Publisher) error {
	n, err := r.exec(ctx, qb.Update(publishersTableName).
		Set("name", publisher.Name).
		Set("address", nullIfEmpty(publisher.Address)).
		Set("website", nullIfEmpty(publisher.Website)).
		Where(sq.Eq{"id": publisher.ID}))
	return mustAffect(n, err, "Publisher", publisher.ID)
}

func (r *repository) DeletePublisher(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, qb.Delete(publishersTableName).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "Publisher", id)
}

func (r *repository) PublisherNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return r.exists(ctx, publishersTableName, sq.Eq{"lower(name)": strings.ToLower(name)}, excludeID)
}

func (r *repository) CountPublishers(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(publishersTableName))
}
