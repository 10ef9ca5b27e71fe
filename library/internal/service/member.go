package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
)

func (s *Service) ListMembers(ctx context.Context, page model.PageRequest) (model.Page[model.Member], error) {
	page = page.Normalize()
	members, total, err := s.repo.ListMembers(ctx, page)
	if err != nil {
		return model.Page[model.Member]{}, err
	}
	return model.NewPage(members, page, total), nil
}

func (s *Service) GetMember(ctx context.Context, id int64) (model.Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) CreateMember(ctx context.Context, in model.MemberInput) (model.Member, error) {
	exists, err := s.repo.MemberEmailExists(ctx, in.Email, 0)
	if err != nil {
		return model.Member{}, err
	}
	if exists {
		return model.Member{}, errs.Conflict("Member with email %s already exists", in.Email)
	}
	member := memberFromInput(in)
	member.IsActive = boolOr(in.IsActive, true)
	id, err := s.repo.CreateMember(ctx, member)
	if err != nil {
		return model.Member{}, err
	}
	s.logActivity(ctx, "CREATE_MEMBER", "Member", id, fmt.Sprintf("Created member: %s %s", in.FirstName, in.LastName))
	return s.repo.GetMember(ctx, id)
}

func (s *Service) UpdateMember(ctx context.Context, id int64, in model.MemberInput) (model.Member, error) {
	current, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return model.Member{}, err
	}
	exists, err := s.repo.MemberEmailExists(ctx, in.Email, id)
	if err != nil {
		return model.Member{}, err
	}
	if exists {
		return model.Member{}, errs.Conflict("Member with email %s already exists", in.Email)
	}
	member := memberFromInput(in)
	member.ID = id
	member.IsActive = boolOr(in.IsActive, current.IsActive)
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return model.Member{}, err
	}
	s.logActivity(ctx, "UPDATE_MEMBER", "Member", id, fmt.Sprintf("Updated member: %s %s", in.FirstName, in.LastName))
	return s.repo.GetMember(ctx, id)
}

// DeleteMember refuses members with any borrow history, since records are kept forever.
func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	err := s.repo.InTx(ctx, func(tx repository.Repository) error {
		if _, err := tx.GetMemberForUpdate(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountBorrowsByMember(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errs.Business("Cannot delete member with borrowing history")
		}
		return tx.DeleteMember(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logActivity(ctx, "DELETE_MEMBER", "Member", id, fmt.Sprintf("Deleted member %d", id))
	return nil
}

func (s *Service) DeactivateMember(ctx context.Context, id int64) (model.Member, error) {
	member, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return model.Member{}, err
	}
	member.IsActive = false
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return model.Member{}, err
	}
	s.logActivity(ctx, "DEACTIVATE_MEMBER", "Member", id, fmt.Sprintf("Deactivated member: %s %s", member.FirstName, member.LastName))
	return member, nil
}

func (s *Service) CountActiveMembers(ctx context.Context) (int64, error) {
	return s.repo.CountActiveMembers(ctx)
}

func memberFromInput(in model.MemberInput) model.Member {
	return model.Member{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		Address:   in.Address,
	}
}
