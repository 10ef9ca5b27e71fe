package model

import "time"

type Publisher struct {
	ID        int64     `json:"publisherId" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address,omitempty" db:"address"`
	Website   string    `json:"website,omitempty" db:"website"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	BookCount int64     `json:"bookCount" db:"book_count"`
}

type PublisherInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address"`
	Website string `json:"website" validate:"max=255"`
}
