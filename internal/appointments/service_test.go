package appointments

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

type mockRepo struct {
	appointments map[int64]Appointment
	nextID       int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[int64]Appointment), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]Appointment, int, error) {
	var out []Appointment
	for _, a := range m.appointments {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return Appointment{}, httpx.ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) Create(ctx context.Context, a Appointment) (Appointment, error) {
	a.ID = m.nextID
	m.nextID++
	m.appointments[a.ID] = a
	return a, nil
}

func (m *mockRepo) Update(ctx context.Context, a Appointment) (Appointment, error) {
	if _, ok := m.appointments[a.ID]; !ok {
		return Appointment{}, httpx.ErrNotFound
	}
	m.appointments[a.ID] = a
	return a, nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.appointments[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockRepo) Overlaps(ctx context.Context, doctorID int64, start time.Time, minutes int, excludeID int64) (bool, error) {
	end := start.Add(time.Duration(minutes) * time.Minute)
	for _, a := range m.appointments {
		if a.ID == excludeID || a.DoctorID != doctorID || a.Status == StatusCancelled {
			continue
		}
		aEnd := a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
		if a.ScheduledAt.Before(end) && aEnd.After(start) {
			return true, nil
		}
	}
	return false, nil
}

var _ RepositoryPort = (*mockRepo)(nil)

type mockNotifier struct {
	sent []string
	err  error
}

func (m *mockNotifier) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func baseAppointment() Appointment {
	return Appointment{
		PatientID:       1,
		PatientEmail:    "pat@clinic.test",
		DoctorID:        2,
		ScheduledAt:     time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	}
}

func TestCreateQueuesConfirmation(t *testing.T) {
	notifier := &mockNotifier{}
	svc := NewService(newMockRepo(), notifier, testLogger())

	created, err := svc.Create(context.Background(), baseAppointment())
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, created.Status)
	assert.Equal(t, []string{"pat@clinic.test"}, notifier.sent)
}

func TestCreateSurvivesNotifierFailure(t *testing.T) {
	notifier := &mockNotifier{err: assert.AnError}
	svc := NewService(newMockRepo(), notifier, testLogger())

	created, err := svc.Create(context.Background(), baseAppointment())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
	svc := NewService(newMockRepo(), nil, testLogger())

	_, err := svc.Create(context.Background(), baseAppointment())
	require.NoError(t, err)

	clash := baseAppointment()
	clash.ScheduledAt = clash.ScheduledAt.Add(15 * time.Minute)
	_, err = svc.Create(context.Background(), clash)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateAllowsCancelledSlotReuse(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, testLogger())

	first, err := svc.Create(context.Background(), baseAppointment())
	require.NoError(t, err)

	first.Status = StatusCancelled
	repo.appointments[first.ID] = first

	_, err = svc.Create(context.Background(), baseAppointment())
	assert.NoError(t, err)
}

func TestCreateDefaultsDuration(t *testing.T) {
	svc := NewService(newMockRepo(), nil, testLogger())

	a := baseAppointment()
	a.DurationMinutes = 0
	created, err := svc.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 30, created.DurationMinutes)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMockRepo(), nil, testLogger())

	created, err := svc.Create(context.Background(), baseAppointment())
	require.NoError(t, err)

	created.Status = "no-show"
	_, err = svc.Update(context.Background(), created)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRescheduleSkipsOwnSlot(t *testing.T) {
	svc := NewService(newMockRepo(), nil, testLogger())

	created, err := svc.Create(context.Background(), baseAppointment())
	require.NoError(t, err)

	created.ScheduledAt = created.ScheduledAt.Add(10 * time.Minute)
	updated, err := svc.Update(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, created.ScheduledAt, updated.ScheduledAt)
}
