package service

import (
	"context"
	"testing"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/stretchr/testify/require"
)

// seedCategories builds Fiction(1) > Fantasy(2) > Epic(3) and a second root Science(4).
func seedCategories(f *fakeRepo) {
	f.categories[1] = &model.Category{ID: 1, Name: "Fiction", Level: 0, IsActive: true}
	f.categories[2] = &model.Category{ID: 2, Name: "Fantasy", Level: 1, ParentID: ptr[int64](1), IsActive: true}
	f.categories[3] = &model.Category{ID: 3, Name: "Epic", Level: 2, ParentID: ptr[int64](2), IsActive: true}
	f.categories[4] = &model.Category{ID: 4, Name: "Science", Level: 0, DisplayOrder: 1, IsActive: true}
}

func TestService_UpdateCategory(t *testing.T) {
	tests := []struct {
		name       string
		id         int64
		parentID   *int64
		wantErr    error
		wantLevels map[int64]int
	}{
		{
			name:     "root under its grandchild",
			id:       1,
			parentID: ptr[int64](3),
			wantErr:  errs.ErrCircularCategory,
		},
		{
			name:     "node under its child",
			id:       2,
			parentID: ptr[int64](3),
			wantErr:  errs.ErrCircularCategory,
		},
		{
			name:       "self parent makes root",
			id:         2,
			parentID:   ptr[int64](2),
			wantLevels: map[int64]int{2: 0, 3: 1},
		},
		{
			name:       "nil parent makes root",
			id:         3,
			wantLevels: map[int64]int{3: 0},
		},
		{
			name:       "move subtree under another root",
			id:         2,
			parentID:   ptr[int64](4),
			wantLevels: map[int64]int{1: 0, 2: 1, 3: 2},
		},
		{
			name:       "move subtree deeper",
			id:         4,
			parentID:   ptr[int64](3),
			wantLevels: map[int64]int{4: 3},
		},
		{
			name:     "missing parent",
			id:       2,
			parentID: ptr[int64](99),
			wantErr:  errs.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRepo()
			seedCategories(f)
			svc := newTestService(f)
			name := f.categories[tt.id].Name

			got, err := svc.UpdateCategory(context.Background(), tt.id, model.CategoryInput{Name: name, ParentID: tt.parentID})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantLevels[tt.id], got.Level)
			for id, level := range tt.wantLevels {
				require.Equal(t, level, f.categories[id].Level, "category %d", id)
			}
		})
	}
}

func TestService_UpdateCategory_DuplicateName(t *testing.T) {
	f := newFakeRepo()
	seedCategories(f)
	svc := newTestService(f)

	_, err := svc.UpdateCategory(context.Background(), 2, model.CategoryInput{Name: "Science"})
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestService_CategoryPaths(t *testing.T) {
	f := newFakeRepo()
	seedCategories(f)
	svc := newTestService(f)
	ctx := context.Background()

	epic, err := svc.GetCategory(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "Fiction > Fantasy > Epic", epic.FullPath)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	paths := map[string]string{}
	for _, c := range all {
		paths[c.Name] = c.FullPath
	}
	require.Equal(t, map[string]string{
		"Fiction": "Fiction",
		"Fantasy": "Fiction > Fantasy",
		"Epic":    "Fiction > Fantasy > Epic",
		"Science": "Science",
	}, paths)

	children, err := svc.ListChildCategories(ctx, 1)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "Fiction > Fantasy", children[0].FullPath)

	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, "Fiction", tree[0].Name)
	require.Equal(t, "Science", tree[1].Name)
	require.Equal(t, "Fantasy", tree[0].Children[0].Name)
	require.Equal(t, "Epic", tree[0].Children[0].Children[0].Name)
}

func TestService_CreateCategory(t *testing.T) {
	f := newFakeRepo()
	seedCategories(f)
	svc := newTestService(f)

	got, err := svc.CreateCategory(context.Background(), model.CategoryInput{Name: "Grimdark", ParentID: ptr[int64](3)})
	require.NoError(t, err)
	require.Equal(t, 3, got.Level)
	require.True(t, got.IsActive)
	require.Equal(t, "Fiction > Fantasy > Epic > Grimdark", got.FullPath)

	_, err = svc.CreateCategory(context.Background(), model.CategoryInput{Name: "Fiction"})
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestService_DeleteCategory(t *testing.T) {
	f := newFakeRepo()
	seedCategories(f)
	f.categories[4].BookCount = 2
	svc := newTestService(f)
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteCategory(ctx, 2), errs.ErrBusinessRule)
	require.ErrorIs(t, svc.DeleteCategory(ctx, 4), errs.ErrBusinessRule)
	require.ErrorIs(t, svc.DeleteCategory(ctx, 42), errs.ErrNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, 3))
	require.NotContains(t, f.categories, int64(3))
}
