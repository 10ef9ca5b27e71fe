package model

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PageRequest struct {
	Page   int
	Size   int
	SortBy string
	Desc   bool
}

// Normalize clamps page and size into their valid ranges.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() uint64 {
	return uint64(p.Page) * uint64(p.Size)
}

type Paging struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

type Page[T any] struct {
	Paging
	Items []T `json:"items"`
}

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.Size)))
	}
	return Page[T]{
		Paging: Paging{
			Page:          req.Page,
			PageSize:      req.Size,
			TotalElements: total,
			TotalPages:    pages,
		},
		Items: items,
	}
}
