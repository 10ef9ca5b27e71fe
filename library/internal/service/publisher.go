package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
)

func (s *Service) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	publishers, err := s.repo.ListPublishers(ctx)
	if err != nil {
		return nil, err
	}
	if publishers == nil {
		publishers = []model.Publisher{}
	}
	return publishers, nil
}

func (s *Service) SearchPublishers(ctx context.Context, name string) ([]model.Publisher, error) {
	publishers, err := s.repo.SearchPublishers(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if publishers == nil {
		publishers = []model.Publisher{}
	}
	return publishers, nil
}

func (s *Service) GetPublisher(ctx context.Context, id int64) (model.Publisher, error) {
	return s.repo.GetPublisher(ctx, id)
}

func (s *Service) CreatePublisher(ctx context.Context, in model.PublisherInput) (model.Publisher, error) {
	name := strings.TrimSpace(in.Name)
	exists, err := s.repo.PublisherNameExists(ctx, name, 0)
	if err != nil {
		return model.Publisher{}, err
	}
	if exists {
		return model.Publisher{}, errs.Conflict("Publisher with name '%s' already exists", name)
	}
	id, err := s.repo.CreatePublisher(ctx, model.Publisher{Name: name, Address: in.Address, Website: in.Website})
	if err != nil {
		return model.Publisher{}, err
	}
	s.logActivity(ctx, "CREATE_PUBLISHER", "Publisher", id, fmt.Sprintf("Created publisher: %s", name))
	return s.repo.GetPublisher(ctx, id)
}

func (s *Service) UpdatePublisher(ctx context.Context, id int64, in model.PublisherInput) (model.Publisher, error) {
	name := strings.TrimSpace(in.Name)
	exists, err := s.repo.PublisherNameExists(ctx, name, id)
	if err != nil {
		return model.Publisher{}, err
	}
	if exists {
		return model.Publisher{}, errs.Conflict("Publisher with name '%s' already exists", name)
	}
	err = s.repo.UpdatePublisher(ctx, model.Publisher{ID: id, Name: name, Address: in.Address, Website: in.Website})
	if err != nil {
		return model.Publisher{}, err
	}
	s.logActivity(ctx, "UPDATE_PUBLISHER", "Publisher", id, fmt.Sprintf("Updated publisher: %s", name))
	return s.repo.GetPublisher(ctx, id)
}

func (s *Service) DeletePublisher(ctx context.Context, id int64) error {
	publisher, err := s.repo.GetPublisher(ctx, id)
	if err != nil {
		return err
	}
	if publisher.BookCount > 0 {
		return errs.Business("Cannot delete publisher with associated books")
	}
	if err := s.repo.DeletePublisher(ctx, id); err != nil {
		return err
	}
	s.logActivity(ctx, "DELETE_PUBLISHER", "Publisher", id, fmt.Sprintf("Deleted publisher: %s", publisher.Name))
	return nil
}
