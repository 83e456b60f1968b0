package postgres

import (
	"context"
	"time"

	"github.com/splax/learnhub/internal/domain"
)

const achievementColumns = `a.id, a.code, a.name, a.description, a.category, a.icon, a.criteria, a.threshold, a.points, ua.unlocked_at`

func scanAchievement(row scanner) (*domain.Achievement, error) {
	var a domain.Achievement
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Category, &a.Icon, &a.Criteria, &a.Threshold, &a.Points, &a.UnlockedAt); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *Repository) queryAchievements(ctx context.Context, query string, args ...any) ([]domain.Achievement, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := make([]domain.Achievement, 0)
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

// ListAchievements returns the whole catalogue with the user's unlock times.
func (r *Repository) ListAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = $1
		ORDER BY a.category, a.threshold, a.id`
	return r.queryAchievements(ctx, query, userID)
}

// GetAchievement fetches one achievement with the user's unlock time.
func (r *Repository) GetAchievement(ctx context.Context, id, userID int64) (*domain.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = $2
		WHERE a.id = $1`
	return scanAchievement(r.pool.QueryRow(ctx, query, id, userID))
}

// ListAchievementCategories counts achievements per category.
func (r *Repository) ListAchievementCategories(ctx context.Context) ([]domain.AchievementCategory, error) {
	const query = `SELECT category, COUNT(1) FROM achievements GROUP BY category ORDER BY category`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.AchievementCategory, 0)
	for rows.Next() {
		var c domain.AchievementCategory
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListUserAchievements returns only the achievements a user unlocked.
func (r *Repository) ListUserAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements a
		INNER JOIN user_achievements ua ON ua.achievement_id = a.id
		WHERE ua.user_id = $1
		ORDER BY ua.unlocked_at DESC`
	return r.queryAchievements(ctx, query, userID)
}

// UnlockAchievement records an unlock and reports whether it was new.
func (r *Repository) UnlockAchievement(ctx context.Context, userID, achievementID int64, at time.Time) (bool, error) {
	const query = `INSERT INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, query, userID, achievementID, at)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// LearnerStats collects the counters achievement criteria refer to.
func (r *Repository) LearnerStats(ctx context.Context, userID int64) (domain.LearnerStats, error) {
	const query = `SELECT
			(SELECT COUNT(1) FROM lesson_completions WHERE user_id = $1),
			(SELECT COUNT(1) FROM enrollments WHERE user_id = $1 AND status = 'completed'),
			(SELECT COUNT(DISTINCT quiz_id) FROM quiz_attempts WHERE user_id = $1 AND passed),
			(SELECT COUNT(DISTINCT quiz_id) FROM quiz_attempts WHERE user_id = $1 AND max_score > 0 AND score = max_score),
			(SELECT COUNT(1) FROM certificates WHERE user_id = $1)`
	var s domain.LearnerStats
	err := r.pool.QueryRow(ctx, query, userID).
		Scan(&s.LessonsCompleted, &s.CoursesCompleted, &s.QuizzesPassed, &s.PerfectQuizzes, &s.CertificatesEarned)
	return s, err
}
