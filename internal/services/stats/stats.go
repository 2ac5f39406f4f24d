// Package services собирает сводку административной панели.
package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/newsletter-cms/internal/apperror"
	"github.com/magabrotheeeer/newsletter-cms/internal/models"
)

// recentLimit число свежих записей в каждом списке панели.
const recentLimit = 5

// StatsRepository описывает методы хранилища для сводки панели.
type StatsRepository interface {
	CountUsersByRole(ctx context.Context) (map[string]int, int, error)
	CountArticlesByStatus(ctx context.Context) (map[string]int, error)
	CountIssuesByStatus(ctx context.Context) (map[string]int, error)
	FeedbackStats(ctx context.Context) (*models.FeedbackStats, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	ListArticles(ctx context.Context, status string) ([]*models.Article, error)
}

// DashboardStats — сводка административной панели: агрегаты по
// пользователям, статьям, выпускам и отзывам плюс свежие записи.
// Все числа считаются по живым данным на момент запроса.
type DashboardStats struct {
	Users struct {
		ByRole              map[string]int `json:"by_role"`
		ActiveSubscriptions int            `json:"active_subscriptions"`
	} `json:"users"`
	Articles       map[string]int        `json:"articles"`
	Issues         map[string]int        `json:"issues"`
	Feedback       *models.FeedbackStats `json:"feedback"`
	RecentUsers    []*models.User        `json:"recent_users"`
	RecentArticles []*models.Article     `json:"recent_articles"`
}

// StatsService реализует сбор сводки для администратора.
type StatsService struct {
	repo StatsRepository
	log  *slog.Logger
}

// NewStatsService создает новый экземпляр StatsService.
func NewStatsService(repo StatsRepository, log *slog.Logger) *StatsService {
	return &StatsService{repo: repo, log: log}
}

// Dashboard собирает полную сводку панели администратора.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	byRole, active, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}
	stats.Users.ByRole = byRole
	stats.Users.ActiveSubscriptions = active

	if stats.Articles, err = s.repo.CountArticlesByStatus(ctx); err != nil {
		return nil, apperror.Store(err)
	}
	if stats.Issues, err = s.repo.CountIssuesByStatus(ctx); err != nil {
		return nil, apperror.Store(err)
	}
	if stats.Feedback, err = s.repo.FeedbackStats(ctx); err != nil {
		return nil, apperror.Store(err)
	}

	recentUsers, err := s.repo.ListUsers(ctx, recentLimit, 0)
	if err != nil {
		return nil, apperror.Store(err)
	}
	for _, u := range recentUsers {
		u.PasswordHash = ""
	}
	stats.RecentUsers = recentUsers

	recentArticles, err := s.repo.ListArticles(ctx, "")
	if err != nil {
		return nil, apperror.Store(err)
	}
	if len(recentArticles) > recentLimit {
		recentArticles = recentArticles[:recentLimit]
	}
	stats.RecentArticles = recentArticles

	return &stats, nil
}
