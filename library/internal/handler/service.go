package handler

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/service"
	"github.com/Astemirdum/library-catalog/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (model.LoginResponse, error)

	ListBooks(ctx context.Context, page model.PageRequest) (model.Page[model.Book], error)
	SearchBooks(ctx context.Context, query string, page model.PageRequest) (model.Page[model.Book], error)
	ListAvailableBooks(ctx context.Context, page model.PageRequest) (model.Page[model.Book], error)
	ListBooksByCategory(ctx context.Context, categoryID int64, page model.PageRequest) (model.Page[model.Book], error)
	ListBooksByAuthor(ctx context.Context, authorID int64, page model.PageRequest) (model.Page[model.Book], error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, in model.BookInput) (model.Book, error)
	UpdateBook(ctx context.Context, id int64, in model.BookInput) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	UploadCover(ctx context.Context, id int64, upload service.CoverUpload) (model.Book, error)
	BookStatistics(ctx context.Context) (model.BookStatistics, error)

	ListAuthors(ctx context.Context, page model.PageRequest) (model.Page[model.Author], error)
	SearchAuthors(ctx context.Context, query string) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int64) (model.Author, error)
	CreateAuthor(ctx context.Context, in model.AuthorInput) (model.Author, error)
	UpdateAuthor(ctx context.Context, id int64, in model.AuthorInput) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CategoryTree(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	ListChildCategories(ctx context.Context, id int64) ([]model.Category, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error)
	UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	SearchPublishers(ctx context.Context, name string) ([]model.Publisher, error)
	GetPublisher(ctx context.Context, id int64) (model.Publisher, error)
	CreatePublisher(ctx context.Context, in model.PublisherInput) (model.Publisher, error)
	UpdatePublisher(ctx context.Context, id int64, in model.PublisherInput) (model.Publisher, error)
	DeletePublisher(ctx context.Context, id int64) error

	ListMembers(ctx context.Context, page model.PageRequest) (model.Page[model.Member], error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
	CreateMember(ctx context.Context, in model.MemberInput) (model.Member, error)
	UpdateMember(ctx context.Context, id int64, in model.MemberInput) (model.Member, error)
	DeleteMember(ctx context.Context, id int64) error
	DeactivateMember(ctx context.Context, id int64) (model.Member, error)
	CountActiveMembers(ctx context.Context) (int64, error)

	BorrowBook(ctx context.Context, req model.BorrowRequest) (model.BorrowRecord, error)
	ReturnBook(ctx context.Context, borrowID int64) (model.BorrowRecord, error)
	UpdateOverdue(ctx context.Context) (int64, error)
	ListBorrows(ctx context.Context, filter model.BorrowFilter, page model.PageRequest) (model.Page[model.BorrowRecord], error)
	GetBorrow(ctx context.Context, id int64) (model.BorrowRecord, error)
	ListMemberBorrows(ctx context.Context, memberID int64, page model.PageRequest) (model.Page[model.BorrowRecord], error)
	ListOverdue(ctx context.Context) ([]model.BorrowRecord, error)

	ListUsers(ctx context.Context, role auth.Role) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	CreateUser(ctx context.Context, in model.UserCreate) (model.User, error)
	UpdateUser(ctx context.Context, id int64, in model.UserUpdate) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	DeactivateUser(ctx context.Context, id int64) (model.User, error)

	ListActivities(ctx context.Context, page model.PageRequest) (model.Page[model.UserActivity], error)
	ListUserActivities(ctx context.Context, userID int64, page model.PageRequest) (model.Page[model.UserActivity], error)
}

var _ LibraryService = (*service.Service)(nil)
