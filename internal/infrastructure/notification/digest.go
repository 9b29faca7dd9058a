package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appreport "github.com/expenseally/backend/internal/application/report"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/report"
)

// OverviewProvider assembles the period-over-period business overview a
// digest email is built from.
type OverviewProvider interface {
	BusinessOverview(ctx context.Context, companyID uuid.UUID, filter appreport.PeriodFilter) (*report.BusinessOverview, error)
}

// DigestService emails periodic business summaries to every active
// company. A failure for one company never blocks the others.
type DigestService struct {
	companyRepo company.CompanyRepository
	userRepo    company.UserRepository
	overviews   OverviewProvider
	mailer      Mailer
	logger      *zap.Logger
}

// NewDigestService creates a new DigestService
func NewDigestService(
	companyRepo company.CompanyRepository,
	userRepo company.UserRepository,
	overviews OverviewProvider,
	mailer Mailer,
	logger *zap.Logger,
) *DigestService {
	return &DigestService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		overviews:   overviews,
		mailer:      mailer,
		logger:      logger,
	}
}

// SendWeeklySummaries sends each active company a summary of the seven
// days ending at the start of now's calendar day.
func (s *DigestService) SendWeeklySummaries(ctx context.Context, now time.Time) error {
	to := startOfDay(now)
	from := to.AddDate(0, 0, -7)
	return s.sendAll(ctx, "weekly", from, to)
}

// SendMonthlyDigests sends each active company a summary of the
// previous calendar month.
func (s *DigestService) SendMonthlyDigests(ctx context.Context, now time.Time) error {
	to := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	from := to.AddDate(0, -1, 0)
	return s.sendAll(ctx, "monthly", from, to)
}

func (s *DigestService) sendAll(ctx context.Context, label string, from, to time.Time) error {
	companies, err := s.companyRepo.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list companies for digest", zap.Error(err))
		return err
	}

	sent, failed := 0, 0
	for _, c := range companies {
		if err := s.sendOne(ctx, c, label, from, to); err != nil {
			s.logger.Error("Failed to send digest",
				zap.String("company_id", c.ID.String()),
				zap.String("period", label),
				zap.Error(err),
			)
			failed++
			continue
		}
		sent++
	}

	s.logger.Info("Digest run finished",
		zap.String("period", label),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
	return nil
}

func (s *DigestService) sendOne(ctx context.Context, c *company.Company, label string, from, to time.Time) error {
	recipient, err := s.recipientFor(ctx, c)
	if err != nil {
		return err
	}

	overview, err := s.overviews.BusinessOverview(ctx, c.ID, appreport.PeriodFilter{From: from, To: to})
	if err != nil {
		return err
	}

	subject, body, err := RenderBusinessDigest(c.Name, label, overview)
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, Message{
		To:       []string{recipient},
		Subject:  subject,
		HTMLBody: body,
	})
}

// recipientFor resolves where a company's digest goes: the billing
// contact when set, otherwise the owner's login email.
func (s *DigestService) recipientFor(ctx context.Context, c *company.Company) (string, error) {
	if c.ContactEmail != "" {
		return c.ContactEmail, nil
	}

	owner, err := s.userRepo.FindByID(ctx, c.OwnerUserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("company %s has no reachable owner account", c.ID)
		}
		return "", err
	}
	return owner.Email, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
