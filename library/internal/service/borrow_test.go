package service

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/stretchr/testify/require"
)

func seedBorrowing(f *fakeRepo) {
	f.books[1] = &model.Book{ID: 1, Title: "Dune", IsAvailable: true}
	f.books[2] = &model.Book{ID: 2, Title: "Emma", IsAvailable: false}
	f.members[1] = &model.Member{ID: 1, FirstName: "Ann", IsActive: true}
	f.members[2] = &model.Member{ID: 2, FirstName: "Bob", IsActive: false}
	f.users[7] = &model.User{ID: 7, Username: "librarian", Role: auth.RoleLibrarian, IsActive: true}
}

func librarianCtx() context.Context {
	ctx := auth.SetAuthContext(context.Background(), auth.Principal{UserID: 7, Username: "librarian", Role: auth.RoleLibrarian})
	return auth.SetClientContext(ctx, auth.Client{IP: "10.0.0.1", UserAgent: "test"})
}

func TestService_BorrowBook(t *testing.T) {
	type mockBehavior func(f *fakeRepo)

	tests := []struct {
		name         string
		req          model.BorrowRequest
		mockBehavior mockBehavior
		wantErr      error
	}{
		{
			name: "ok",
			req:  model.BorrowRequest{BookID: 1, MemberID: 1, UserID: ptr[int64](7)},
		},
		{
			name:    "book missing",
			req:     model.BorrowRequest{BookID: 42, MemberID: 1, UserID: ptr[int64](7)},
			wantErr: errs.ErrNotFound,
		},
		{
			name:    "book unavailable",
			req:     model.BorrowRequest{BookID: 2, MemberID: 1, UserID: ptr[int64](7)},
			wantErr: errs.ErrBookUnavailable,
		},
		{
			name:    "member missing",
			req:     model.BorrowRequest{BookID: 1, MemberID: 9, UserID: ptr[int64](7)},
			wantErr: errs.ErrNotFound,
		},
		{
			name:    "member inactive",
			req:     model.BorrowRequest{BookID: 1, MemberID: 2, UserID: ptr[int64](7)},
			wantErr: errs.ErrMemberInactive,
		},
		{
			name: "member at cap",
			req:  model.BorrowRequest{BookID: 1, MemberID: 1, UserID: ptr[int64](7)},
			mockBehavior: func(f *fakeRepo) {
				for i := int64(0); i < 5; i++ {
					f.borrows[10+i] = &model.BorrowRecord{ID: 10 + i, MemberID: 1, Status: model.StatusBorrowed}
				}
			},
			wantErr: errs.ErrBorrowLimit,
		},
		{
			name: "overdue loans count towards cap",
			req:  model.BorrowRequest{BookID: 1, MemberID: 1, UserID: ptr[int64](7)},
			mockBehavior: func(f *fakeRepo) {
				for i := int64(0); i < 5; i++ {
					f.borrows[10+i] = &model.BorrowRecord{ID: 10 + i, MemberID: 1, Status: model.StatusOverdue}
				}
			},
			wantErr: errs.ErrBorrowLimit,
		},
		{
			name: "returned loans do not count",
			req:  model.BorrowRequest{BookID: 1, MemberID: 1, UserID: ptr[int64](7)},
			mockBehavior: func(f *fakeRepo) {
				returned := fixedNow.Add(-time.Hour)
				for i := int64(0); i < 5; i++ {
					f.borrows[10+i] = &model.BorrowRecord{ID: 10 + i, MemberID: 1, Status: model.StatusReturned, ReturnDate: &returned}
				}
			},
		},
		{
			name:    "user missing",
			req:     model.BorrowRequest{BookID: 1, MemberID: 1, UserID: ptr[int64](99)},
			wantErr: errs.ErrNotFound,
		},
		{
			name:    "days out of range",
			req:     model.BorrowRequest{BookID: 1, MemberID: 1, UserID: ptr[int64](7), Days: ptr(31)},
			wantErr: errs.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRepo()
			seedBorrowing(f)
			if tt.mockBehavior != nil {
				tt.mockBehavior(f)
			}
			before := len(f.borrows)
			svc := newTestService(f)

			rec, err := svc.BorrowBook(librarianCtx(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Len(t, f.borrows, before)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.StatusBorrowed, rec.Status)
			require.Equal(t, "2024-03-15", rec.DueDate.String())
			require.Equal(t, fixedNow, rec.BorrowDate)
			require.False(t, f.books[1].IsAvailable)
			require.Len(t, f.borrows, before+1)
		})
	}
}

func TestService_BorrowBook_DefaultsToCaller(t *testing.T) {
	f := newFakeRepo()
	seedBorrowing(f)
	svc := newTestService(f)

	rec, err := svc.BorrowBook(librarianCtx(), model.BorrowRequest{BookID: 1, MemberID: 1, Days: ptr(7)})
	require.NoError(t, err)
	require.Equal(t, int64(7), rec.UserID)
	require.Equal(t, "2024-03-08", rec.DueDate.String())

	require.Len(t, f.activities, 1)
	require.Equal(t, "BORROW_BOOK", f.activities[0].Action)
	require.Equal(t, "10.0.0.1", f.activities[0].IPAddress)

	_, err = svc.BorrowBook(context.Background(), model.BorrowRequest{BookID: 1, MemberID: 1})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestService_BorrowBook_ActivityFailureIgnored(t *testing.T) {
	f := newFakeRepo()
	seedBorrowing(f)
	f.activityErr = errActivityStore
	svc := newTestService(f)

	_, err := svc.BorrowBook(librarianCtx(), model.BorrowRequest{BookID: 1, MemberID: 1})
	require.NoError(t, err)
	require.False(t, f.books[1].IsAvailable)
}

func TestService_ReturnBook(t *testing.T) {
	tests := []struct {
		name     string
		due      string
		status   model.BorrowStatus
		wantFine float64
	}{
		{name: "before due", due: "2024-03-05", status: model.StatusBorrowed, wantFine: 0},
		{name: "on due date", due: "2024-03-01", status: model.StatusBorrowed, wantFine: 0},
		{name: "three days late", due: "2024-02-27", status: model.StatusBorrowed, wantFine: 3},
		{name: "swept overdue", due: "2024-02-20", status: model.StatusOverdue, wantFine: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeRepo()
			seedBorrowing(f)
			f.books[1].IsAvailable = false
			due, err := model.ParseDate(tt.due)
			require.NoError(t, err)
			f.borrows[5] = &model.BorrowRecord{ID: 5, BookID: 1, MemberID: 1, UserID: 7, DueDate: due, Status: tt.status}
			svc := newTestService(f)

			rec, err := svc.ReturnBook(librarianCtx(), 5)
			require.NoError(t, err)
			require.Equal(t, model.StatusReturned, rec.Status)
			require.NotNil(t, rec.ReturnDate)
			require.Equal(t, tt.wantFine, rec.FineAmount)
			require.True(t, f.books[1].IsAvailable)

			_, err = svc.ReturnBook(librarianCtx(), 5)
			require.ErrorIs(t, err, errs.ErrAlreadyReturned)
		})
	}

	t.Run("missing record", func(t *testing.T) {
		svc := newTestService(newFakeRepo())
		_, err := svc.ReturnBook(librarianCtx(), 1)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_BorrowThenReturn(t *testing.T) {
	f := newFakeRepo()
	seedBorrowing(f)
	svc := newTestService(f)
	ctx := librarianCtx()

	rec, err := svc.BorrowBook(ctx, model.BorrowRequest{BookID: 1, MemberID: 1, Days: ptr(14)})
	require.NoError(t, err)
	require.Equal(t, model.DateOf(fixedNow).AddDays(14), rec.DueDate)

	_, err = svc.BorrowBook(ctx, model.BorrowRequest{BookID: 1, MemberID: 1})
	require.ErrorIs(t, err, errs.ErrBookUnavailable)

	returned, err := svc.ReturnBook(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, returned.Status)
	require.Zero(t, returned.FineAmount)
	require.True(t, f.books[1].IsAvailable)
}

func TestService_UpdateOverdue(t *testing.T) {
	f := newFakeRepo()
	yesterday := model.DateOf(fixedNow).AddDays(-1)
	today := model.DateOf(fixedNow)
	returnedAt := fixedNow.Add(-48 * time.Hour)
	f.borrows[1] = &model.BorrowRecord{ID: 1, DueDate: yesterday, Status: model.StatusBorrowed}
	f.borrows[2] = &model.BorrowRecord{ID: 2, DueDate: today, Status: model.StatusBorrowed}
	f.borrows[3] = &model.BorrowRecord{ID: 3, DueDate: yesterday.AddDays(-3), Status: model.StatusReturned, ReturnDate: &returnedAt}
	svc := newTestService(f)

	n, err := svc.UpdateOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, model.StatusOverdue, f.borrows[1].Status)
	require.Equal(t, model.StatusBorrowed, f.borrows[2].Status)
	require.Equal(t, model.StatusReturned, f.borrows[3].Status)

	n, err = svc.UpdateOverdue(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	overdue, err := svc.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, int64(1), overdue[0].ID)
}
