package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Notifier delivers appointment confirmations out of band. Failures are logged
// but never fail the booking itself.
type Notifier interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

// Service implements appointment scheduling rules.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service. Notifier may be nil when the queue is not
// configured.
func NewService(repo RepositoryPort, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// List returns a filtered page of appointments.
func (s *Service) List(ctx context.Context, filter Filter) ([]Appointment, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id int64) (Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Create books an appointment and queues a confirmation email for the patient.
func (s *Service) Create(ctx context.Context, a Appointment) (Appointment, error) {
	if err := s.validate(ctx, &a, 0); err != nil {
		return Appointment{}, err
	}
	a.Status = StatusScheduled

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return Appointment{}, err
	}
	s.notifyConfirmation(ctx, created)
	return created, nil
}

// Update reschedules or amends an appointment.
func (s *Service) Update(ctx context.Context, a Appointment) (Appointment, error) {
	if a.ID <= 0 {
		return Appointment{}, fmt.Errorf("%w: appointment id is required", httpx.ErrValidation)
	}
	existing, err := s.repo.Get(ctx, a.ID)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status == "" {
		a.Status = existing.Status
	}
	switch a.Status {
	case StatusScheduled, StatusCompleted, StatusCancelled:
	default:
		return Appointment{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, a.Status)
	}
	if a.Status == StatusScheduled {
		if err := s.validate(ctx, &a, a.ID); err != nil {
			return Appointment{}, err
		}
	}
	return s.repo.Update(ctx, a)
}

// Delete cancels and removes an appointment record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, a *Appointment, excludeID int64) error {
	if a.PatientID <= 0 || a.DoctorID <= 0 {
		return fmt.Errorf("%w: patient and doctor are required", httpx.ErrValidation)
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", httpx.ErrValidation)
	}
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = 30
	}
	busy, err := s.repo.Overlaps(ctx, a.DoctorID, a.ScheduledAt, a.DurationMinutes, excludeID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: doctor is not available at that time", httpx.ErrDuplicate)
	}
	return nil
}

func (s *Service) notifyConfirmation(ctx context.Context, a Appointment) {
	if s.notifier == nil || a.PatientEmail == "" {
		return
	}
	subject := "Appointment confirmed"
	body := fmt.Sprintf("Dear %s,\n\nYour appointment is confirmed for %s.\n\nClinicFlow",
		a.PatientName, a.ScheduledAt.Format(time.RFC1123))
	if err := s.notifier.EnqueueEmail(ctx, a.PatientEmail, subject, body); err != nil {
		s.logger.Warn("enqueue confirmation",
			slog.Int64("appointment_id", a.ID), slog.Any("error", err))
	}
}
