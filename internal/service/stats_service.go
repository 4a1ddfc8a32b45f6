package service

import (
	"context"
	"time"

	"tienda-api/internal/domain"
)

type StatsService struct {
	repo domain.StatsRepository
	now  func() time.Time
}

func NewStatsService(repo domain.StatsRepository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

// Snapshot 订单窗口：30 天前的零点起
func (s *StatsService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.Snapshot(ctx, today.AddDate(0, 0, -30))
}
