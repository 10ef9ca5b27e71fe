package model

import "time"

type Book struct {
	ID                  int64     `json:"bookId" db:"id"`
	Title               string    `json:"title" db:"title"`
	ISBN                string    `json:"isbn" db:"isbn"`
	PublicationYear     *int      `json:"publicationYear,omitempty" db:"publication_year"`
	Edition             string    `json:"edition,omitempty" db:"edition"`
	Summary             string    `json:"summary,omitempty" db:"summary"`
	Language            string    `json:"language,omitempty" db:"language"`
	PageCount           *int      `json:"pageCount,omitempty" db:"page_count"`
	CoverImageURL       string    `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	IsAvailable         bool      `json:"isAvailable" db:"is_available"`
	PublisherID         *int64    `json:"publisherId,omitempty" db:"publisher_id"`
	PublisherName       string    `json:"publisherName,omitempty" db:"publisher_name"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
	TotalBorrows        int64     `json:"totalBorrows" db:"total_borrows"`
	IsCurrentlyBorrowed bool      `json:"isCurrentlyBorrowed" db:"currently_borrowed"`

	AuthorIDs     []int64  `json:"authorIds" db:"-"`
	AuthorNames   []string `json:"authorNames" db:"-"`
	CategoryIDs   []int64  `json:"categoryIds" db:"-"`
	CategoryNames []string `json:"categoryNames" db:"-"`
}

type BookInput struct {
	Title           string  `json:"title" validate:"required,max=500"`
	ISBN            string  `json:"isbn" validate:"required,max=20"`
	PublicationYear *int    `json:"publicationYear" validate:"omitempty,min=1000,max=2100"`
	Edition         string  `json:"edition" validate:"max=50"`
	Summary         string  `json:"summary"`
	Language        string  `json:"language" validate:"max=50"`
	PageCount       *int    `json:"pageCount" validate:"omitempty,min=1"`
	CoverImageURL   string  `json:"coverImageUrl" validate:"max=500"`
	IsAvailable     *bool   `json:"isAvailable"`
	PublisherID     *int64  `json:"publisherId"`
	AuthorIDs       []int64 `json:"authorIds"`
	CategoryIDs     []int64 `json:"categoryIds"`
}

type BookFilter struct {
	Query         string
	AvailableOnly bool
	CategoryID    *int64
	AuthorID      *int64
}

// BookRelation links a book to a named author or category.
type BookRelation struct {
	BookID int64  `db:"book_id"`
	ID     int64  `db:"id"`
	Name   string `db:"name"`
}

type BookStatistics struct {
	TotalBooks         int64   `json:"totalBooks"`
	AvailableBooks     int64   `json:"availableBooks"`
	BorrowedBooks      int64   `json:"borrowedBooks"`
	BorrowedPercentage float64 `json:"borrowedPercentage"`
	TotalAuthors       int64   `json:"totalAuthors"`
	TotalCategories    int64   `json:"totalCategories"`
	TotalPublishers    int64   `json:"totalPublishers"`
}
