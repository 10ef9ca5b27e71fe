package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

func authorSelect() sq.SelectBuilder {
	return qb.Select(
		"a.id", "a.first_name", "a.last_name",
		"a.first_name || ' ' || a.last_name AS full_name",
		"COALESCE(a.biography, '') AS biography",
		"a.birth_date", "a.death_date", "a.created_at", "a.updated_at",
		"(SELECT count(*) FROM book_authors ba WHERE ba.author_id = a.id) AS book_count",
	).From(authorsTableName + " a")
}

func (r *repository) ListAuthors(ctx context.Context, page model.PageRequest) ([]model.Author, int64, error) {
	total, err := r.count(ctx, qb.Select("count(*)").From(authorsTableName))
	if err != nil {
		return nil, 0, err
	}
	var authors []model.Author
	err = r.selectAll(ctx, &authors, authorSelect().
		OrderBy("a.last_name", "a.first_name", "a.id").
		Limit(uint64(page.Size)).
		Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (r *repository) SearchAuthors(ctx context.Context, query string) ([]model.Author, error) {
	like := "%" + query + "%"
	var authors []model.Author
	err := r.selectAll(ctx, &authors, authorSelect().
		Where(sq.Or{sq.ILike{"a.first_name": like}, sq.ILike{"a.last_name": like}}).
		OrderBy("a.last_name", "a.first_name"))
	return authors, err
}

func (r *repository) GetAuthor(ctx context.Context, id int64) (model.Author, error) {
	var author model.Author
	if err := r.get(ctx, &author, authorSelect().Where(sq.Eq{"a.id": id})); err != nil {
		return model.Author{}, notFound(err, "Author", id)
	}
	return author, nil
}

func (r *repository) CreateAuthor(ctx context.Context, author model.Author) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(authorsTableName).
		Columns("first_name", "last_name", "biography", "birth_date", "death_date").
		Values(author.FirstName, author.LastName, nullIfEmpty(author.Biography), author.BirthDate, author.DeathDate))
	if err != nil {
		return 0, mapPgErr(err, "Author")
	}
	return id, nil
}

func (r *repository) UpdateAuthor(ctx context.Context, author model.Author) error {
	n, err := r.exec(ctx, qb.Update(authorsTableName).
		Set("first_name", author.FirstName).
		Set("last_name", author.LastName).
		Set("biography", nullIfEmpty(author.Biography)).
		Set("birth_date", author.BirthDate).
		Set("death_date", author.DeathDate).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": author.ID}))
	return mustAffect(n, err, "Author", author.ID)
}

func (r *repository) DeleteAuthor(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, qb.Delete(authorsTableName).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "Author", id)
}

func (r *repository) CountExistingAuthors(ctx context.Context, ids []int64) (int, error) {
	return r.countExisting(ctx, authorsTableName, ids)
}

func (r *repository) CountAuthors(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(authorsTableName))
}
