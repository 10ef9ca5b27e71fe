package model

import "time"

type Author struct {
	ID        int64     `json:"authorId" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	FullName  string    `json:"fullName" db:"full_name"`
	Biography string    `json:"biography,omitempty" db:"biography"`
	BirthDate *Date     `json:"birthDate,omitempty" db:"birth_date"`
	DeathDate *Date     `json:"deathDate,omitempty" db:"death_date"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	BookCount int64     `json:"bookCount" db:"book_count"`
}

type AuthorInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Biography string `json:"biography"`
	BirthDate *Date  `json:"birthDate"`
	DeathDate *Date  `json:"deathDate"`
}
