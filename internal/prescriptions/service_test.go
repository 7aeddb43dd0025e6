package prescriptions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

type mockRepo struct {
	prescriptions map[int64]Prescription
	nextID        int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[int64]Prescription), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]Prescription, int, error) {
	var out []Prescription
	for _, p := range m.prescriptions {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return Prescription{}, httpx.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Create(ctx context.Context, p Prescription) (Prescription, error) {
	p.ID = m.nextID
	m.nextID++
	m.prescriptions[p.ID] = p
	return p, nil
}

var _ RepositoryPort = (*mockRepo)(nil)

func TestCreatePrescription(t *testing.T) {
	svc := NewService(newMockRepo())

	created, err := svc.Create(context.Background(), Prescription{
		PatientID: 1,
		DoctorID:  2,
		Medications: []MedicationLine{
			{Name: " Amoxicillin ", Dosage: "500mg", Frequency: "3x daily"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Amoxicillin", created.Medications[0].Name)
	assert.NotZero(t, created.ID)
}

func TestCreateRequiresMedications(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), Prescription{PatientID: 1, DoctorID: 2})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRequiresDosage(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), Prescription{
		PatientID:   1,
		DoctorID:    2,
		Medications: []MedicationLine{{Name: "Ibuprofen"}},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
