package model

import "time"

type Category struct {
	ID           int64      `json:"categoryId" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description,omitempty" db:"description"`
	Level        int        `json:"level" db:"level"`
	DisplayOrder int        `json:"displayOrder" db:"display_order"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	ParentID     *int64     `json:"parentId,omitempty" db:"parent_id"`
	ParentName   string     `json:"parentName,omitempty" db:"parent_name"`
	FullPath     string     `json:"fullPath" db:"-"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	BookCount    int64      `json:"bookCount" db:"book_count"`
	Children     []Category `json:"children,omitempty" db:"-"`
}

type CategoryInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=255"`
	DisplayOrder *int   `json:"displayOrder" validate:"omitempty,min=0"`
	IsActive     *bool  `json:"isActive"`
	ParentID     *int64 `json:"parentId"`
}

const CategoryPathSeparator = " > "
