package assessment

import (
	"context"
	"strings"

	"github.com/splax/learnhub/internal/domain"
)

// ProjectInput holds student-editable project fields.
type ProjectInput struct {
	CourseID    int64
	Title       string
	Description string
	RepoURL     string
}

// ListProjects returns the caller's submissions, or all of them for admins.
func (s Service) ListProjects(ctx context.Context, caller domain.Identity) ([]domain.Project, error) {
	userID := caller.ID
	if caller.IsAdmin() {
		userID = 0
	}
	return s.repo.ListProjects(ctx, userID)
}

// CreateProject submits a project for a course the caller is enrolled in.
func (s Service) CreateProject(ctx context.Context, caller domain.Identity, input ProjectInput) (*domain.Project, error) {
	if err := s.guard.EnsureCourseVisible(ctx, &caller, input.CourseID); err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, caller, input.CourseID); err != nil {
		return nil, err
	}
	project := &domain.Project{
		UserID:      caller.ID,
		CourseID:    input.CourseID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		RepoURL:     strings.TrimSpace(input.RepoURL),
		Status:      domain.ProjectSubmitted,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project submitted", "project_id", project.ID, "course_id", project.CourseID, "user_id", caller.ID)
	return project, nil
}

// GetProject returns a submission to its author, the course instructor or an admin.
func (s Service) GetProject(ctx context.Context, caller domain.Identity, id int64) (*domain.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID == caller.ID {
		return project, nil
	}
	ok, err := s.manages(ctx, caller, project.CourseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return project, nil
}

// UpdateProject edits an ungraded submission of the caller.
func (s Service) UpdateProject(ctx context.Context, caller domain.Identity, id int64, input ProjectInput) (*domain.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != caller.ID {
		return nil, domain.ErrForbidden
	}
	if project.Status == domain.ProjectGraded {
		return nil, domain.Invalid("graded projects cannot be edited")
	}
	project.Title = strings.TrimSpace(input.Title)
	project.Description = input.Description
	project.RepoURL = strings.TrimSpace(input.RepoURL)
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a submission of the caller. Admins may delete any.
func (s Service) DeleteProject(ctx context.Context, caller domain.Identity, id int64) error {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if project.UserID != caller.ID && !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.repo.DeleteProject(ctx, id)
}

// PendingProjects returns the grading queue of the caller's courses.
func (s Service) PendingProjects(ctx context.Context, caller domain.Identity) ([]domain.Project, error) {
	instructorID := caller.ID
	if caller.IsAdmin() {
		instructorID = 0
	}
	return s.repo.ListPendingProjects(ctx, instructorID)
}

// Grade records a 0-100 grade with feedback on a submission in an owned course.
func (s Service) Grade(ctx context.Context, caller domain.Identity, id int64, grade int, feedback string) (*domain.Project, error) {
	if grade < 0 || grade > 100 {
		return nil, domain.Invalid("grade must be between 0 and 100")
	}
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnsureCourseOwner(ctx, caller, project.CourseID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	grader := caller.ID
	project.Status = domain.ProjectGraded
	project.Grade = &grade
	project.Feedback = strings.TrimSpace(feedback)
	project.GradedBy = &grader
	project.GradedAt = &now
	if err := s.repo.GradeProject(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project graded", "project_id", id, "grade", grade, "by", caller.ID)
	return project, nil
}
