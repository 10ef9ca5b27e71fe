package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
)

func (s *Service) ListAuthors(ctx context.Context, page model.PageRequest) (model.Page[model.Author], error) {
	page = page.Normalize()
	authors, total, err := s.repo.ListAuthors(ctx, page)
	if err != nil {
		return model.Page[model.Author]{}, err
	}
	return model.NewPage(authors, page, total), nil
}

func (s *Service) SearchAuthors(ctx context.Context, query string) ([]model.Author, error) {
	authors, err := s.repo.SearchAuthors(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	if authors == nil {
		authors = []model.Author{}
	}
	return authors, nil
}

func (s *Service) GetAuthor(ctx context.Context, id int64) (model.Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

func (s *Service) CreateAuthor(ctx context.Context, in model.AuthorInput) (model.Author, error) {
	if err := checkLifespan(in); err != nil {
		return model.Author{}, err
	}
	id, err := s.repo.CreateAuthor(ctx, authorFromInput(in))
	if err != nil {
		return model.Author{}, err
	}
	s.logActivity(ctx, "CREATE_AUTHOR", "Author", id, fmt.Sprintf("Created author: %s %s", in.FirstName, in.LastName))
	return s.repo.GetAuthor(ctx, id)
}

func (s *Service) UpdateAuthor(ctx context.Context, id int64, in model.AuthorInput) (model.Author, error) {
	if err := checkLifespan(in); err != nil {
		return model.Author{}, err
	}
	author := authorFromInput(in)
	author.ID = id
	if err := s.repo.UpdateAuthor(ctx, author); err != nil {
		return model.Author{}, err
	}
	s.logActivity(ctx, "UPDATE_AUTHOR", "Author", id, fmt.Sprintf("Updated author: %s %s", in.FirstName, in.LastName))
	return s.repo.GetAuthor(ctx, id)
}

func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	author, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return err
	}
	if author.BookCount > 0 {
		return errs.Business("Cannot delete author with associated books")
	}
	if err := s.repo.DeleteAuthor(ctx, id); err != nil {
		return err
	}
	s.logActivity(ctx, "DELETE_AUTHOR", "Author", id, fmt.Sprintf("Deleted author: %s", author.FullName))
	return nil
}

func checkLifespan(in model.AuthorInput) error {
	if in.BirthDate != nil && in.DeathDate != nil && in.DeathDate.Before(*in.BirthDate) {
		return errs.Validation("deathDate cannot be before birthDate")
	}
	return nil
}

func authorFromInput(in model.AuthorInput) model.Author {
	return model.Author{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Biography: in.Biography,
		BirthDate: in.BirthDate,
		DeathDate: in.DeathDate,
	}
}
