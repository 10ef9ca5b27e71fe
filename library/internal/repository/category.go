package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

// maxCategoryDepth bounds the recursive walks in case stored data already holds a cycle.
const maxCategoryDepth = 1000

func categorySelect() sq.SelectBuilder {
	return qb.Select(
		"c.id", "c.name",
		"COALESCE(c.description, '') AS description",
		"c.level", "c.display_order", "c.is_active", "c.parent_id",
		"COALESCE(p.name, '') AS parent_name",
		"c.created_at", "c.updated_at",
		"(SELECT count(*) FROM book_categories bc WHERE bc.category_id = c.id) AS book_count",
	).
		From(categoriesTableName + " c").
		LeftJoin(categoriesTableName + " p ON p.id = c.parent_id")
}

func (r *repository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.selectAll(ctx, &categories, categorySelect().OrderBy("c.display_order", "c.name"))
	return categories, err
}

func (r *repository) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	var category model.Category
	if err := r.get(ctx, &category, categorySelect().Where(sq.Eq{"c.id": id})); err != nil {
		return model.Category{}, notFound(err, "Category", id)
	}
	return category, nil
}

func (r *repository) ListChildCategories(ctx context.Context, parentID int64) ([]model.Category, error) {
	var categories []model.Category
	err := r.selectAll(ctx, &categories, categorySelect().
		Where(sq.Eq{"c.parent_id": parentID}).
		OrderBy("c.display_order", "c.name"))
	return categories, err
}

// CategoryAncestors returns the chain from id up to its root, starting with id itself.
func (r *repository) CategoryAncestors(ctx context.Context, id int64) ([]model.Category, error) {
	const q = `
WITH RECURSIVE chain AS (
    SELECT id, name, level, parent_id, 0 AS depth
    FROM categories
    WHERE id = $1
    UNION ALL
    SELECT c.id, c.name, c.level, c.parent_id, chain.depth + 1
    FROM categories c
        JOIN chain ON c.id = chain.parent_id
    WHERE chain.depth < $2
)
SELECT id, name, level, parent_id FROM chain ORDER BY depth`
	var chain []model.Category
	if err := r.q.SelectContext(ctx, &chain, q, id, maxCategoryDepth); err != nil {
		return nil, err
	}
	return chain, nil
}

func (r *repository) CreateCategory(ctx context.Context, category model.Category) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(categoriesTableName).
		Columns("name", "description", "level", "display_order", "is_active", "parent_id").
		Values(category.Name, nullIfEmpty(category.Description), category.Level,
			category.DisplayOrder, category.IsActive, category.ParentID))
	if err != nil {
		return 0, mapPgErr(err, "Category")
	}
	return id, nil
}

func (r *repository) UpdateCategory(ctx context.Context, category model.Category) error {
	n, err := r.exec(ctx, qb.Update(categoriesTableName).
		Set("name", category.Name).
		Set("description", nullIfEmpty(category.Description)).
		Set("level", category.Level).
		Set("display_order", category.DisplayOrder).
		Set("is_active", category.IsActive).
		Set("parent_id", category.ParentID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": category.ID}))
	return mustAffect(n, err, "Category", category.ID)
}

// UpdateSubtreeLevels recomputes level for every descendant of rootID from the root's stored level.
func (r *repository) UpdateSubtreeLevels(ctx context.Context, rootID int64) error {
	const q = `
WITH RECURSIVE tree AS (
    SELECT id, level, 0 AS depth
    FROM categories
    WHERE id = $1
    UNION ALL
    SELECT c.id, tree.level + 1, tree.depth + 1
    FROM categories c
        JOIN tree ON c.parent_id = tree.id
    WHERE tree.depth < $2
)
UPDATE categories c
SET level = tree.level, updated_at = now()
FROM tree
WHERE c.id = tree.id AND c.id <> $1 AND c.level <> tree.level`
	_, err := r.q.ExecContext(ctx, q, rootID, maxCategoryDepth)
	return err
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, qb.Delete(categoriesTableName).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "Category", id)
}

func (r *repository) CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return r.exists(ctx, categoriesTableName, sq.Eq{"name": name}, excludeID)
}

func (r *repository) CountExistingCategories(ctx context.Context, ids []int64) (int, error) {
	return r.countExisting(ctx, categoriesTableName, ids)
}

func (r *repository) CountCategories(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(categoriesTableName))
}
