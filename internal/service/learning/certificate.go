package learning

import (
	"context"
	"errors"
	"strings"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/pkg/crypto"
)

const (
	certificatePrefix     = "LH-"
	certificateCodeLength = 10
	certificateAttempts   = 3
)

// ListCertificates returns the caller's certificates.
func (s Service) ListCertificates(ctx context.Context, caller domain.Identity) ([]domain.Certificate, error) {
	return s.repo.ListCertificates(ctx, caller.ID)
}

// GetCertificate returns a certificate of the caller. Admins may read any.
func (s Service) GetCertificate(ctx context.Context, caller domain.Identity, id int64) (*domain.Certificate, error) {
	certificate, err := s.repo.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(caller, certificate.UserID) {
		return nil, domain.ErrForbidden
	}
	return certificate, nil
}

// VerifyCertificate looks up a certificate by its public code.
func (s Service) VerifyCertificate(ctx context.Context, code string) (*domain.Certificate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, repository.ErrNotFound
	}
	return s.repo.GetCertificateByCode(ctx, code)
}

// IssueCertificate issues a certificate to an enrolled learner of an owned course.
// Issuing twice returns the existing certificate.
func (s Service) IssueCertificate(ctx context.Context, caller domain.Identity, userID, courseID int64) (*domain.Certificate, error) {
	if err := s.guard.EnsureCourseOwner(ctx, caller, courseID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetEnrollmentByUserCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Invalid("user %d is not enrolled in course %d", userID, courseID)
		}
		return nil, err
	}
	return s.issueCertificate(ctx, userID, courseID)
}

func (s Service) issueCertificate(ctx context.Context, userID, courseID int64) (*domain.Certificate, error) {
	for range certificateAttempts {
		existing, err := s.repo.GetCertificateByUserCourse(ctx, userID, courseID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		code, err := crypto.RandomCode(certificateCodeLength)
		if err != nil {
			return nil, err
		}
		certificate := &domain.Certificate{
			UserID:   userID,
			CourseID: courseID,
			Code:     certificatePrefix + code,
			IssuedAt: s.now().UTC(),
		}
		err = s.repo.CreateCertificate(ctx, certificate)
		if err == nil {
			s.logger.Info("certificate issued", "user_id", userID, "course_id", courseID, "code", certificate.Code)
			return certificate, nil
		}
		// a concurrent issue or a code collision; look again
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
	}
	return nil, errors.New("certificate code space exhausted")
}
