package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"go.uber.org/zap"
)

// fakeRepo keeps just enough state in maps for the workflows under test.
// Methods it does not override panic through the nil embedded interface.
type fakeRepo struct {
	repository.Repository

	books      map[int64]*model.Book
	members    map[int64]*model.Member
	users      map[int64]*model.User
	borrows    map[int64]*model.BorrowRecord
	categories map[int64]*model.Category
	activities []model.UserActivity

	activityErr error
	nextID      int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:      map[int64]*model.Book{},
		members:    map[int64]*model.Member{},
		users:      map[int64]*model.User{},
		borrows:    map[int64]*model.BorrowRecord{},
		categories: map[int64]*model.Category{},
		nextID:     100,
	}
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo repository.Repository) *Service {
	tm := auth.NewTokenManager(auth.Config{
		Secret:     "test",
		AccessTTL:  time.Hour,
		RefreshTTL: 2 * time.Hour,
		Issuer:     "library-catalog",
	})
	svc := NewService(repo, tm, nil, Config{
		MaxActiveBorrows:  5,
		DailyFine:         1.0,
		DefaultBorrowDays: 14,
		BcryptCost:        4,
		MaxCoverSize:      5 << 20,
	}, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) InTx(_ context.Context, fn func(repo repository.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) GetBookForUpdate(_ context.Context, id int64) (model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return model.Book{}, errs.NotFound("Book", id)
	}
	return *b, nil
}

func (f *fakeRepo) SetBookAvailable(_ context.Context, id int64, available bool) (bool, error) {
	b, ok := f.books[id]
	if !ok || b.IsAvailable == available {
		return false, nil
	}
	b.IsAvailable = available
	return true, nil
}

func (f *fakeRepo) GetMember(_ context.Context, id int64) (model.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return model.Member{}, errs.NotFound("Member", id)
	}
	return *m, nil
}

func (f *fakeRepo) GetMemberForUpdate(ctx context.Context, id int64) (model.Member, error) {
	return f.GetMember(ctx, id)
}

func (f *fakeRepo) GetUser(_ context.Context, id int64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, errs.NotFound("User", id)
	}
	return *u, nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return model.User{}, errs.NotFound("User", username)
}

func (f *fakeRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	f.users[id].LastLogin = &at
	return nil
}

func (f *fakeRepo) CountOpenBorrowsByMember(_ context.Context, memberID int64) (int, error) {
	n := 0
	for _, r := range f.borrows {
		if r.MemberID == memberID && r.ReturnDate == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateBorrow(_ context.Context, record model.BorrowRecord) (int64, error) {
	record.ID = f.id()
	f.borrows[record.ID] = &record
	return record.ID, nil
}

func (f *fakeRepo) GetBorrowForUpdate(_ context.Context, id int64) (model.BorrowRecord, error) {
	r, ok := f.borrows[id]
	if !ok {
		return model.BorrowRecord{}, errs.NotFound("Borrow record", id)
	}
	return *r, nil
}

func (f *fakeRepo) UpdateBorrow(_ context.Context, record model.BorrowRecord) error {
	if _, ok := f.borrows[record.ID]; !ok {
		return errs.NotFound("Borrow record", record.ID)
	}
	f.borrows[record.ID] = &record
	return nil
}

func (f *fakeRepo) MarkOverdue(_ context.Context, today model.Date) (int64, error) {
	var n int64
	for _, r := range f.borrows {
		if r.Status == model.StatusBorrowed && r.DueDate.Before(today) {
			r.Status = model.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListOverdueBorrows(_ context.Context, today model.Date) ([]model.BorrowRecord, error) {
	var out []model.BorrowRecord
	for _, r := range f.borrows {
		if r.ReturnDate == nil && r.DueDate.Before(today) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CreateActivity(_ context.Context, a model.UserActivity) error {
	if f.activityErr != nil {
		return f.activityErr
	}
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeRepo) GetCategory(_ context.Context, id int64) (model.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return model.Category{}, errs.NotFound("Category", id)
	}
	return *c, nil
}

func (f *fakeRepo) ListChildCategories(_ context.Context, parentID int64) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) CategoryAncestors(_ context.Context, id int64) ([]model.Category, error) {
	var chain []model.Category
	for c, ok := f.categories[id]; ok && len(chain) < 1000; {
		chain = append(chain, *c)
		if c.ParentID == nil {
			break
		}
		c, ok = f.categories[*c.ParentID]
	}
	return chain, nil
}

func (f *fakeRepo) CategoryNameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, c := range f.categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateCategory(_ context.Context, c model.Category) (int64, error) {
	c.ID = f.id()
	f.categories[c.ID] = &c
	return c.ID, nil
}

func (f *fakeRepo) UpdateCategory(_ context.Context, c model.Category) error {
	if _, ok := f.categories[c.ID]; !ok {
		return errs.NotFound("Category", c.ID)
	}
	f.categories[c.ID] = &c
	return nil
}

func (f *fakeRepo) UpdateSubtreeLevels(ctx context.Context, rootID int64) error {
	root := f.categories[rootID]
	children, _ := f.ListChildCategories(ctx, rootID)
	for _, child := range children {
		f.categories[child.ID].Level = root.Level + 1
		if err := f.UpdateSubtreeLevels(ctx, child.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepo) DeleteCategory(_ context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

var errActivityStore = errors.New("activity store down")

func ptr[T any](v T) *T { return &v }
