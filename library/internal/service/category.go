package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
)

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := indexCategories(categories)
	for i := range categories {
		categories[i].FullPath = fullPath(byID, categories[i].ID)
	}
	return categories, nil
}

// CategoryTree returns root categories with their descendants nested, each level ordered by display order then name.
func (s *Service) CategoryTree(ctx context.Context) ([]model.Category, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[int64][]model.Category)
	var roots []model.Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	visited := make(map[int64]bool, len(categories))
	var attach func(nodes []model.Category) []model.Category
	attach = func(nodes []model.Category) []model.Category {
		out := make([]model.Category, 0, len(nodes))
		for _, n := range nodes {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			n.Children = attach(children[n.ID])
			out = append(out, n)
		}
		return out
	}
	return attach(roots), nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	chain, err := s.repo.CategoryAncestors(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	category.FullPath = pathOf(chain)
	return category, nil
}

func (s *Service) ListChildCategories(ctx context.Context, id int64) ([]model.Category, error) {
	parent, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	children, err := s.repo.ListChildCategories(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range children {
		children[i].FullPath = parent.FullPath + model.CategoryPathSeparator + children[i].Name
	}
	if children == nil {
		children = []model.Category{}
	}
	return children, nil
}

func (s *Service) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	var id int64
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		exists, err := tx.CategoryNameExists(ctx, in.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			return errs.Conflict("Category with name '%s' already exists", in.Name)
		}
		category := model.Category{
			Name:         in.Name,
			Description:  in.Description,
			DisplayOrder: intOr(in.DisplayOrder, 0),
			IsActive:     boolOr(in.IsActive, true),
		}
		if in.ParentID != nil {
			parent, err := tx.GetCategory(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			category.ParentID = &parent.ID
			category.Level = parent.Level + 1
		}
		id, err = tx.CreateCategory(ctx, category)
		return err
	})
	if err != nil {
		return model.Category{}, err
	}
	s.logActivity(ctx, "CREATE_CATEGORY", "Category", id, fmt.Sprintf("Created category: %s", in.Name))
	return s.GetCategory(ctx, id)
}

// UpdateCategory rejects a parent that lies in the category's own subtree. A parent equal to
// the category itself, or none, makes it a root. Levels of the whole subtree follow the move.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (model.Category, error) {
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		category, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		exists, err := tx.CategoryNameExists(ctx, in.Name, id)
		if err != nil {
			return err
		}
		if exists {
			return errs.Conflict("Category with name '%s' already exists", in.Name)
		}

		category.Name = in.Name
		category.Description = in.Description
		category.DisplayOrder = intOr(in.DisplayOrder, category.DisplayOrder)
		category.IsActive = boolOr(in.IsActive, category.IsActive)

		if in.ParentID != nil && *in.ParentID != id {
			parent, err := tx.GetCategory(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			chain, err := tx.CategoryAncestors(ctx, parent.ID)
			if err != nil {
				return err
			}
			for _, ancestor := range chain {
				if ancestor.ID == id {
					return errs.ErrCircularCategory
				}
			}
			category.ParentID = &parent.ID
			category.Level = parent.Level + 1
		} else {
			category.ParentID = nil
			category.Level = 0
		}

		if err := tx.UpdateCategory(ctx, category); err != nil {
			return err
		}
		return tx.UpdateSubtreeLevels(ctx, id)
	})
	if err != nil {
		return model.Category{}, err
	}
	s.logActivity(ctx, "UPDATE_CATEGORY", "Category", id, fmt.Sprintf("Updated category: %s", in.Name))
	return s.GetCategory(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	var name string
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		category, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		name = category.Name
		children, err := tx.ListChildCategories(ctx, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return errs.Business("Cannot delete category with subcategories")
		}
		if category.BookCount > 0 {
			return errs.Business("Cannot delete category with associated books")
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logActivity(ctx, "DELETE_CATEGORY", "Category", id, fmt.Sprintf("Deleted category: %s", name))
	return nil
}

func indexCategories(categories []model.Category) map[int64]model.Category {
	byID := make(map[int64]model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID
}

// fullPath walks parent links from id to the root. The walk stops on a repeated node.
func fullPath(byID map[int64]model.Category, id int64) string {
	var chain []model.Category
	seen := make(map[int64]bool)
	for cur, ok := byID[id]; ok && !seen[cur.ID]; {
		seen[cur.ID] = true
		chain = append(chain, cur)
		if cur.ParentID == nil {
			break
		}
		cur, ok = byID[*cur.ParentID]
	}
	return pathOf(chain)
}

// pathOf joins a leaf-to-root chain as "Root > ... > Leaf".
func pathOf(chain []model.Category) string {
	names := make([]string, len(chain))
	for i, c := range chain {
		names[len(chain)-1-i] = c.Name
	}
	return strings.Join(names, model.CategoryPathSeparator)
}
