package service

import (
	"context"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/library/internal/storage"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"go.uber.org/zap"
)

type Config struct {
	MaxActiveBorrows  int
	DailyFine         float64
	DefaultBorrowDays int
	BcryptCost        int
	MaxCoverSize      int64
}

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	tokens *auth.TokenManager
	covers storage.CoverStore
	cfg    Config
	now    func() time.Time
}

func NewService(repo repository.Repository, tokens *auth.TokenManager, covers storage.CoverStore, cfg Config, log *zap.Logger) *Service {
	return &Service{
		log:    log.Named("service"),
		repo:   repo,
		tokens: tokens,
		covers: covers,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now())
}

// logActivity appends an audit row for the authenticated caller. Failures are only logged.
func (s *Service) logActivity(ctx context.Context, action, entityType string, entityID int64, description string) {
	p, ok := auth.GetAuthContext(ctx)
	if !ok {
		s.log.Debug("activity without principal", zap.String("action", action))
		return
	}
	s.logActivityFor(ctx, p.UserID, action, entityType, entityID, description)
}

func (s *Service) logActivityFor(ctx context.Context, userID int64, action, entityType string, entityID int64, description string) {
	client := auth.GetClientContext(ctx)
	activity := model.UserActivity{
		UserID:      userID,
		Action:      action,
		EntityType:  entityType,
		Description: description,
		IPAddress:   client.IP,
		UserAgent:   client.UserAgent,
		Timestamp:   s.now(),
	}
	if entityID != 0 {
		activity.EntityID = &entityID
	}
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		s.log.Warn("log activity", zap.String("action", action), zap.Int64("userID", userID), zap.Error(err))
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
