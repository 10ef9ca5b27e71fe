package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/library/internal/storage"
	"golang.org/x/sync/errgroup"
)

func (s *Service) listBooks(ctx context.Context, filter model.BookFilter, page model.PageRequest) (model.Page[model.Book], error) {
	page = page.Normalize()
	books, total, err := s.repo.ListBooks(ctx, filter, page)
	if err != nil {
		return model.Page[model.Book]{}, err
	}
	return model.NewPage(books, page, total), nil
}

func (s *Service) ListBooks(ctx context.Context, page model.PageRequest) (model.Page[model.Book], error) {
	return s.listBooks(ctx, model.BookFilter{}, page)
}

func (s *Service) SearchBooks(ctx context.Context, query string, page model.PageRequest) (model.Page[model.Book], error) {
	return s.listBooks(ctx, model.BookFilter{Query: strings.TrimSpace(query)}, page)
}

func (s *Service) ListAvailableBooks(ctx context.Context, page model.PageRequest) (model.Page[model.Book], error) {
	return s.listBooks(ctx, model.BookFilter{AvailableOnly: true}, page)
}

func (s *Service) ListBooksByCategory(ctx context.Context, categoryID int64, page model.PageRequest) (model.Page[model.Book], error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return model.Page[model.Book]{}, err
	}
	return s.listBooks(ctx, model.BookFilter{CategoryID: &categoryID}, page)
}

func (s *Service) ListBooksByAuthor(ctx context.Context, authorID int64, page model.PageRequest) (model.Page[model.Book], error) {
	if _, err := s.repo.GetAuthor(ctx, authorID); err != nil {
		return model.Page[model.Book]{}, err
	}
	return s.listBooks(ctx, model.BookFilter{AuthorID: &authorID}, page)
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, in model.BookInput) (model.Book, error) {
	var id int64
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		if err := s.checkBookInput(ctx, tx, in, 0); err != nil {
			return err
		}
		book := bookFromInput(in)
		book.IsAvailable = boolOr(in.IsAvailable, true)
		var err error
		if id, err = tx.CreateBook(ctx, book); err != nil {
			return err
		}
		if err := tx.SetBookAuthors(ctx, id, uniqueIDs(in.AuthorIDs)); err != nil {
			return err
		}
		return tx.SetBookCategories(ctx, id, uniqueIDs(in.CategoryIDs))
	})
	if err != nil {
		return model.Book{}, err
	}
	s.logActivity(ctx, "CREATE_BOOK", "Book", id, fmt.Sprintf("Created book: %s", in.Title))
	return s.repo.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int64, in model.BookInput) (model.Book, error) {
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		current, err := tx.GetBookForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkBookInput(ctx, tx, in, id); err != nil {
			return err
		}
		book := bookFromInput(in)
		book.ID = id
		book.IsAvailable = boolOr(in.IsAvailable, current.IsAvailable)
		if book.CoverImageURL == "" {
			book.CoverImageURL = current.CoverImageURL
		}
		if book.IsAvailable && !current.IsAvailable {
			open, err := tx.HasOpenBorrow(ctx, id)
			if err != nil {
				return err
			}
			if open {
				return errs.Business("Cannot mark book available while it is borrowed")
			}
		}
		if err := tx.UpdateBook(ctx, book); err != nil {
			return err
		}
		if err := tx.SetBookAuthors(ctx, id, uniqueIDs(in.AuthorIDs)); err != nil {
			return err
		}
		return tx.SetBookCategories(ctx, id, uniqueIDs(in.CategoryIDs))
	})
	if err != nil {
		return model.Book{}, err
	}
	s.logActivity(ctx, "UPDATE_BOOK", "Book", id, fmt.Sprintf("Updated book: %s", in.Title))
	return s.repo.GetBook(ctx, id)
}

func (s *Service) checkBookInput(ctx context.Context, tx repository.Repository, in model.BookInput, excludeID int64) error {
	exists, err := tx.ExistsByISBN(ctx, in.ISBN, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return errs.Conflict("Book with ISBN %s already exists", in.ISBN)
	}
	if in.PublisherID != nil {
		if _, err := tx.GetPublisher(ctx, *in.PublisherID); err != nil {
			return err
		}
	}
	if ids := uniqueIDs(in.AuthorIDs); len(ids) > 0 {
		n, err := tx.CountExistingAuthors(ctx, ids)
		if err != nil {
			return err
		}
		if n != len(ids) {
			return errs.New(errs.ErrNotFound, "One or more authors not found")
		}
	}
	if ids := uniqueIDs(in.CategoryIDs); len(ids) > 0 {
		n, err := tx.CountExistingCategories(ctx, ids)
		if err != nil {
			return err
		}
		if n != len(ids) {
			return errs.New(errs.ErrNotFound, "One or more categories not found")
		}
	}
	return nil
}

func bookFromInput(in model.BookInput) model.Book {
	return model.Book{
		Title:           strings.TrimSpace(in.Title),
		ISBN:            strings.TrimSpace(in.ISBN),
		PublicationYear: in.PublicationYear,
		Edition:         in.Edition,
		Summary:         in.Summary,
		Language:        in.Language,
		PageCount:       in.PageCount,
		CoverImageURL:   in.CoverImageURL,
		PublisherID:     in.PublisherID,
	}
}

// DeleteBook refuses books on loan and books with any borrow history, since records are kept forever.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	var title string
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		book, err := tx.GetBookForUpdate(ctx, id)
		if err != nil {
			return err
		}
		title = book.Title
		open, err := tx.HasOpenBorrow(ctx, id)
		if err != nil {
			return err
		}
		if open {
			return errs.Business("Cannot delete book that is currently borrowed")
		}
		n, err := tx.CountBorrowsByBook(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errs.Business("Cannot delete book with borrowing history")
		}
		return tx.DeleteBook(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logActivity(ctx, "DELETE_BOOK", "Book", id, fmt.Sprintf("Deleted book: %s", title))
	return nil
}

type CoverUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *Service) UploadCover(ctx context.Context, id int64, upload CoverUpload) (model.Book, error) {
	if upload.Size <= 0 {
		return model.Book{}, errs.Validation("Please select a file to upload")
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return model.Book{}, errs.Validation("Only image files are allowed")
	}
	if s.cfg.MaxCoverSize > 0 && upload.Size > s.cfg.MaxCoverSize {
		return model.Book{}, errs.Validation("File size must not exceed %d bytes", s.cfg.MaxCoverSize)
	}
	if _, err := s.repo.GetBook(ctx, id); err != nil {
		return model.Book{}, err
	}

	url, err := s.covers.Save(ctx, storage.CoverKey(id, upload.Filename), upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return model.Book{}, err
	}
	if err := s.repo.SetBookCover(ctx, id, url); err != nil {
		return model.Book{}, err
	}
	s.logActivity(ctx, "UPLOAD_COVER", "Book", id, fmt.Sprintf("Uploaded cover: %s", url))
	return s.repo.GetBook(ctx, id)
}

func (s *Service) BookStatistics(ctx context.Context) (model.BookStatistics, error) {
	var st model.BookStatistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalBooks, err = s.repo.CountBooks(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		st.AvailableBooks, err = s.repo.CountBooks(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		st.TotalAuthors, err = s.repo.CountAuthors(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalCategories, err = s.repo.CountCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalPublishers, err = s.repo.CountPublishers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookStatistics{}, err
	}
	st.BorrowedBooks = st.TotalBooks - st.AvailableBooks
	if st.TotalBooks > 0 {
		st.BorrowedPercentage = float64(st.BorrowedBooks) / float64(st.TotalBooks) * 100
	}
	return st, nil
}
