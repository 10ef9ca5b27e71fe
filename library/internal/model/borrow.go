package model

import "time"

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusReturned BorrowStatus = "RETURNED"
	StatusOverdue  BorrowStatus = "OVERDUE"
)

type BorrowRecord struct {
	ID         int64        `json:"borrowId" db:"id"`
	BookID     int64        `json:"bookId" db:"book_id"`
	MemberID   int64        `json:"memberId" db:"member_id"`
	UserID     int64        `json:"userId" db:"user_id"`
	BorrowDate time.Time    `json:"borrowDate" db:"borrow_date"`
	DueDate    Date         `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time   `json:"returnDate,omitempty" db:"return_date"`
	FineAmount float64      `json:"fineAmount" db:"fine_amount"`
	Status     BorrowStatus `json:"status" db:"status"`
}

type BorrowRequest struct {
	BookID   int64  `json:"bookId" validate:"required"`
	MemberID int64  `json:"memberId" validate:"required"`
	UserID   *int64 `json:"userId"`
	Days     *int   `json:"days" validate:"omitempty,min=1,max=30"`
}

type BorrowFilter struct {
	Status   BorrowStatus
	MemberID *int64
}
