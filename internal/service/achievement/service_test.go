package achievement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/internal/ws"
)

type fakeAchievementRepo struct {
	repository.AchievementRepository
	stats     domain.LearnerStats
	catalogue []domain.Achievement
	unlocked  map[int64]bool
	unlockErr error
}

func (f *fakeAchievementRepo) LearnerStats(context.Context, int64) (domain.LearnerStats, error) {
	return f.stats, nil
}

func (f *fakeAchievementRepo) ListAchievements(context.Context, int64) ([]domain.Achievement, error) {
	out := make([]domain.Achievement, len(f.catalogue))
	copy(out, f.catalogue)
	return out, nil
}

func (f *fakeAchievementRepo) UnlockAchievement(_ context.Context, _, id int64, _ time.Time) (bool, error) {
	if f.unlockErr != nil {
		return false, f.unlockErr
	}
	if f.unlocked[id] {
		return false, nil
	}
	f.unlocked[id] = true
	return true, nil
}

type notifierStub struct {
	sent []ws.Notification
}

func (n *notifierStub) Notify(_ int64, note ws.Notification) error {
	n.sent = append(n.sent, note)
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func catalogue() []domain.Achievement {
	return []domain.Achievement{
		{ID: 1, Code: "first-lesson", Criteria: domain.CriteriaLessonsCompleted, Threshold: 1},
		{ID: 2, Code: "ten-lessons", Criteria: domain.CriteriaLessonsCompleted, Threshold: 10},
		{ID: 3, Code: "first-quiz", Criteria: domain.CriteriaQuizzesPassed, Threshold: 1},
		{ID: 4, Code: "perfectionist", Criteria: domain.CriteriaPerfectQuizzes, Threshold: 1},
		{ID: 5, Code: "mystery", Criteria: "logins", Threshold: 1},
	}
}

func TestEligible(t *testing.T) {
	stats := domain.LearnerStats{LessonsCompleted: 10, QuizzesPassed: 0, CertificatesEarned: 2}
	tests := []struct {
		name string
		a    domain.Achievement
		want bool
	}{
		{name: "threshold met exactly", a: domain.Achievement{Criteria: domain.CriteriaLessonsCompleted, Threshold: 10}, want: true},
		{name: "threshold not met", a: domain.Achievement{Criteria: domain.CriteriaLessonsCompleted, Threshold: 11}},
		{name: "zero counter", a: domain.Achievement{Criteria: domain.CriteriaQuizzesPassed, Threshold: 1}},
		{name: "certificates", a: domain.Achievement{Criteria: domain.CriteriaCertificatesEarned, Threshold: 1}, want: true},
		{name: "unknown criteria", a: domain.Achievement{Criteria: "logins", Threshold: 1}},
		{name: "zero threshold never matches", a: domain.Achievement{Criteria: domain.CriteriaLessonsCompleted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(tt.a, stats); got != tt.want {
				t.Fatalf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckUnlocksNewlyMetAchievements(t *testing.T) {
	repo := &fakeAchievementRepo{
		stats:     domain.LearnerStats{LessonsCompleted: 3, QuizzesPassed: 1},
		catalogue: catalogue(),
		unlocked:  map[int64]bool{},
	}
	notifier := &notifierStub{}
	svc := New(repo, notifier, newLogger())

	got, err := svc.Check(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Code != "first-lesson" || got[1].Code != "first-quiz" {
		t.Fatalf("unexpected unlocks %+v", got)
	}
	for _, a := range got {
		if a.UnlockedAt == nil {
			t.Fatalf("unlock time missing on %s", a.Code)
		}
	}
	if len(notifier.sent) != 2 || notifier.sent[0].Type != NotificationUnlocked {
		t.Fatalf("expected two notifications, got %+v", notifier.sent)
	}

	again, err := svc.Check(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 || len(notifier.sent) != 2 {
		t.Fatalf("second check must not unlock twice, got %+v", again)
	}
}

func TestCheckSkipsAlreadyUnlocked(t *testing.T) {
	items := catalogue()
	at := time.Now()
	items[0].UnlockedAt = &at
	repo := &fakeAchievementRepo{
		stats:     domain.LearnerStats{LessonsCompleted: 1},
		catalogue: items,
		unlockErr: errors.New("must not be called"),
	}
	got, err := New(repo, nil, newLogger()).Check(context.Background(), 20)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected nothing to unlock, got %+v (%v)", got, err)
	}
}
