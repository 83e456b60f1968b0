package achievement

import (
	"context"
	"time"

	"log/slog"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/internal/ws"
)

// NotificationUnlocked is the notification type sent when a badge unlocks.
const NotificationUnlocked = "achievement.unlocked"

// Notifier pushes realtime notifications to a user.
type Notifier interface {
	Notify(userID int64, n ws.Notification) error
}

// Service evaluates and serves achievements.
type Service struct {
	repo     repository.AchievementRepository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New returns an achievement service. notifier may be nil.
func New(repo repository.AchievementRepository, notifier Notifier, logger *slog.Logger) Service {
	return Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// List returns the catalogue with the caller's unlock times.
func (s Service) List(ctx context.Context, caller domain.Identity) ([]domain.Achievement, error) {
	return s.repo.ListAchievements(ctx, caller.ID)
}

// Categories summarises the catalogue by category.
func (s Service) Categories(ctx context.Context) ([]domain.AchievementCategory, error) {
	return s.repo.ListAchievementCategories(ctx)
}

// Get returns one achievement with the caller's unlock time.
func (s Service) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Achievement, error) {
	return s.repo.GetAchievement(ctx, id, caller.ID)
}

// Mine returns the achievements the caller has unlocked.
func (s Service) Mine(ctx context.Context, caller domain.Identity) ([]domain.Achievement, error) {
	return s.repo.ListUserAchievements(ctx, caller.ID)
}

// Eligible reports whether stats satisfy the achievement criteria. Unknown
// criteria never match.
func Eligible(a domain.Achievement, stats domain.LearnerStats) bool {
	value, ok := stats.Value(a.Criteria)
	return ok && a.Threshold > 0 && value >= a.Threshold
}

// Check unlocks every achievement whose criteria the user now meets and
// returns the newly unlocked ones.
func (s Service) Check(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	stats, err := s.repo.LearnerStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalogue, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked := make([]domain.Achievement, 0)
	for _, a := range catalogue {
		if a.UnlockedAt != nil || !Eligible(a, stats) {
			continue
		}
		at := s.now().UTC()
		created, err := s.repo.UnlockAchievement(ctx, userID, a.ID, at)
		if err != nil {
			return unlocked, err
		}
		if !created {
			continue
		}
		a.UnlockedAt = &at
		unlocked = append(unlocked, a)
		s.logger.Info("achievement unlocked", "user_id", userID, "achievement", a.Code)
		s.notify(userID, a)
	}
	return unlocked, nil
}

func (s Service) notify(userID int64, a domain.Achievement) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(userID, ws.Notification{
		Type:   NotificationUnlocked,
		Data:   a,
		SentAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("achievement notification failed", "user_id", userID, "error", err)
	}
}
