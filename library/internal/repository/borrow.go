package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

var borrowColumns = []string{
	"id", "book_id", "member_id", "user_id", "borrow_date", "due_date", "return_date", "fine_amount", "status",
}

var openBorrow = sq.Eq{"return_date": nil}

func applyBorrowFilter(b sq.SelectBuilder, f model.BorrowFilter) sq.SelectBuilder {
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	}
	if f.MemberID != nil {
		b = b.Where(sq.Eq{"member_id": *f.MemberID})
	}
	return b
}

func (r *repository) ListBorrows(ctx context.Context, filter model.BorrowFilter, page model.PageRequest) ([]model.BorrowRecord, int64, error) {
	total, err := r.count(ctx, applyBorrowFilter(qb.Select("count(*)").From(borrowRecordsTableName), filter))
	if err != nil {
		return nil, 0, err
	}
	var records []model.BorrowRecord
	err = r.selectAll(ctx, &records, applyBorrowFilter(qb.Select(borrowColumns...).From(borrowRecordsTableName), filter).
		OrderBy("borrow_date DESC", "id DESC").
		Limit(uint64(page.Size)).
		Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) GetBorrow(ctx context.Context, id int64) (model.BorrowRecord, error) {
	var record model.BorrowRecord
	if err := r.get(ctx, &record, qb.Select(borrowColumns...).From(borrowRecordsTableName).Where(sq.Eq{"id": id})); err != nil {
		return model.BorrowRecord{}, notFound(err, "Borrow record", id)
	}
	return record, nil
}

func (r *repository) GetBorrowForUpdate(ctx context.Context, id int64) (model.BorrowRecord, error) {
	var record model.BorrowRecord
	q := qb.Select(borrowColumns...).From(borrowRecordsTableName).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE")
	if err := r.get(ctx, &record, q); err != nil {
		return model.BorrowRecord{}, notFound(err, "Borrow record", id)
	}
	return record, nil
}

func (r *repository) CreateBorrow(ctx context.Context, record model.BorrowRecord) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(borrowRecordsTableName).
		Columns("book_id", "member_id", "user_id", "borrow_date", "due_date", "fine_amount", "status").
		Values(record.BookID, record.MemberID, record.UserID, record.BorrowDate, record.DueDate,
			record.FineAmount, string(record.Status)))
	if err != nil {
		return 0, mapPgErr(err, "Borrow record")
	}
	return id, nil
}

func (r *repository) UpdateBorrow(ctx context.Context, record model.BorrowRecord) error {
	n, err := r.exec(ctx, qb.Update(borrowRecordsTableName).
		Set("return_date", record.ReturnDate).
		Set("fine_amount", record.FineAmount).
		Set("status", string(record.Status)).
		Where(sq.Eq{"id": record.ID}))
	return mustAffect(n, err, "Borrow record", record.ID)
}

// CountOpenBorrowsByMember counts loans without a return date, overdue ones included.
func (r *repository) CountOpenBorrowsByMember(ctx context.Context, memberID int64) (int, error) {
	n, err := r.count(ctx, qb.Select("count(*)").From(borrowRecordsTableName).
		Where(sq.Eq{"member_id": memberID}).
		Where(openBorrow))
	return int(n), err
}

func (r *repository) CountBorrowsByBook(ctx context.Context, bookID int64) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(borrowRecordsTableName).Where(sq.Eq{"book_id": bookID}))
}

func (r *repository) CountBorrowsByMember(ctx context.Context, memberID int64) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(borrowRecordsTableName).Where(sq.Eq{"member_id": memberID}))
}

func (r *repository) HasOpenBorrow(ctx context.Context, bookID int64) (bool, error) {
	return r.exists(ctx, borrowRecordsTableName, sq.And{sq.Eq{"book_id": bookID}, openBorrow}, 0)
}

func (r *repository) ListOverdueBorrows(ctx context.Context, today model.Date) ([]model.BorrowRecord, error) {
	var records []model.BorrowRecord
	err := r.selectAll(ctx, &records, qb.Select(borrowColumns...).From(borrowRecordsTableName).
		Where(openBorrow).
		Where(sq.Lt{"due_date": today}).
		OrderBy("due_date", "id"))
	return records, err
}

// MarkOverdue flips BORROWED records due before today and returns how many changed.
func (r *repository) MarkOverdue(ctx context.Context, today model.Date) (int64, error) {
	return r.exec(ctx, qb.Update(borrowRecordsTableName).
		Set("status", string(model.StatusOverdue)).
		Where(sq.Eq{"status": string(model.StatusBorrowed)}).
		Where(sq.Lt{"due_date": today}))
}
