package service

import (
	"context"
	"fmt"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"go.uber.org/zap"
)

const (
	minBorrowDays = 1
	maxBorrowDays = 30
)

// BorrowBook checks the book, the member, the member's open loans and the processing user,
// then creates the record and takes the book off the shelf in one transaction.
func (s *Service) BorrowBook(ctx context.Context, req model.BorrowRequest) (model.BorrowRecord, error) {
	days := intOr(req.Days, s.cfg.DefaultBorrowDays)
	if days < minBorrowDays || days > maxBorrowDays {
		return model.BorrowRecord{}, errs.Validation("days must be between %d and %d", minBorrowDays, maxBorrowDays)
	}
	var userID int64
	if req.UserID != nil {
		userID = *req.UserID
	} else if p, ok := auth.GetAuthContext(ctx); ok {
		userID = p.UserID
	}
	if userID == 0 {
		return model.BorrowRecord{}, errs.Validation("userId is required")
	}

	var record model.BorrowRecord
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		book, err := tx.GetBookForUpdate(ctx, req.BookID)
		if err != nil {
			return err
		}
		if !book.IsAvailable {
			return errs.ErrBookUnavailable
		}
		member, err := tx.GetMemberForUpdate(ctx, req.MemberID)
		if err != nil {
			return err
		}
		if !member.IsActive {
			return errs.ErrMemberInactive
		}
		open, err := tx.CountOpenBorrowsByMember(ctx, member.ID)
		if err != nil {
			return err
		}
		if open >= s.cfg.MaxActiveBorrows {
			return errs.ErrBorrowLimit
		}
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}

		now := s.now()
		record = model.BorrowRecord{
			BookID:     book.ID,
			MemberID:   member.ID,
			UserID:     userID,
			BorrowDate: now,
			DueDate:    model.DateOf(now).AddDays(days),
			Status:     model.StatusBorrowed,
		}
		if record.ID, err = tx.CreateBorrow(ctx, record); err != nil {
			return err
		}
		flipped, err := tx.SetBookAvailable(ctx, book.ID, false)
		if err != nil {
			return err
		}
		if !flipped {
			return errs.ErrBookUnavailable
		}
		return nil
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}

	s.logActivity(ctx, "BORROW_BOOK", "BorrowRecord", record.ID,
		fmt.Sprintf("Book %d borrowed by member %d, due %s", record.BookID, record.MemberID, record.DueDate))
	return record, nil
}

// ReturnBook closes the loan, charges the fine for every day past the due date and puts the book back.
func (s *Service) ReturnBook(ctx context.Context, borrowID int64) (model.BorrowRecord, error) {
	var record model.BorrowRecord
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		var err error
		record, err = tx.GetBorrowForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}
		if record.Status == model.StatusReturned {
			return errs.ErrAlreadyReturned
		}

		now := s.now()
		record.ReturnDate = &now
		record.Status = model.StatusReturned
		record.FineAmount = s.fine(record.DueDate, model.DateOf(now))
		if err := tx.UpdateBorrow(ctx, record); err != nil {
			return err
		}
		if _, err := tx.SetBookAvailable(ctx, record.BookID, true); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}

	s.logActivity(ctx, "RETURN_BOOK", "BorrowRecord", record.ID,
		fmt.Sprintf("Book %d returned by member %d, fine %.2f", record.BookID, record.MemberID, record.FineAmount))
	return record, nil
}

func (s *Service) fine(due, returned model.Date) float64 {
	if !due.Before(returned) {
		return 0
	}
	return float64(returned.DaysSince(due)) * s.cfg.DailyFine
}

// UpdateOverdue flips every BORROWED record past its due date to OVERDUE.
func (s *Service) UpdateOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, s.today())
	if err != nil {
		return 0, err
	}
	s.log.Info("overdue sweep", zap.Int64("updated", n))
	s.logActivity(ctx, "UPDATE_OVERDUE", "BorrowRecord", 0, fmt.Sprintf("%d records marked overdue", n))
	return n, nil
}

func (s *Service) ListBorrows(ctx context.Context, filter model.BorrowFilter, page model.PageRequest) (model.Page[model.BorrowRecord], error) {
	page = page.Normalize()
	records, total, err := s.repo.ListBorrows(ctx, filter, page)
	if err != nil {
		return model.Page[model.BorrowRecord]{}, err
	}
	return model.NewPage(records, page, total), nil
}

func (s *Service) GetBorrow(ctx context.Context, id int64) (model.BorrowRecord, error) {
	return s.repo.GetBorrow(ctx, id)
}

func (s *Service) ListMemberBorrows(ctx context.Context, memberID int64, page model.PageRequest) (model.Page[model.BorrowRecord], error) {
	if _, err := s.repo.GetMember(ctx, memberID); err != nil {
		return model.Page[model.BorrowRecord]{}, err
	}
	return s.ListBorrows(ctx, model.BorrowFilter{MemberID: &memberID}, page)
}

// ListOverdue returns unreturned loans whose due date has passed, swept or not.
func (s *Service) ListOverdue(ctx context.Context) ([]model.BorrowRecord, error) {
	records, err := s.repo.ListOverdueBorrows(ctx, s.today())
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.BorrowRecord{}
	}
	return records, nil
}
