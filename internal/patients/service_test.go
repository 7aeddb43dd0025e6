package patients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

type mockRepo struct {
	patients map[int64]Patient
	byUser   map[int64]int64
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[int64]Patient), byUser: make(map[int64]int64), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]Patient, int, error) {
	var out []Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return Patient{}, httpx.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByUserID(ctx context.Context, userID int64) (Patient, error) {
	id, ok := m.byUser[userID]
	if !ok {
		return Patient{}, httpx.ErrNotFound
	}
	return m.patients[id], nil
}

func (m *mockRepo) Create(ctx context.Context, p Patient) (Patient, error) {
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return Patient{}, httpx.ErrDuplicate
		}
	}
	p.ID = m.nextID
	m.nextID++
	m.patients[p.ID] = p
	if p.UserID != nil {
		m.byUser[*p.UserID] = p.ID
	}
	return p, nil
}

func (m *mockRepo) Update(ctx context.Context, p Patient) (Patient, error) {
	if _, ok := m.patients[p.ID]; !ok {
		return Patient{}, httpx.ErrNotFound
	}
	m.patients[p.ID] = p
	return p, nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.patients[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

var _ RepositoryPort = (*mockRepo)(nil)

func TestCreateNormalizesEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	created, err := svc.Create(context.Background(), Patient{
		FirstName: " Jane ",
		LastName:  "Doe",
		Email:     " Jane.Doe@Clinic.Test ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", created.FirstName)
	assert.Equal(t, "jane.doe@clinic.test", created.Email)
}

func TestCreateRequiresNameAndEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Create(context.Background(), Patient{FirstName: "Jane"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Patient{FirstName: "Jane", LastName: "Doe"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Create(context.Background(), Patient{FirstName: "A", LastName: "B", Email: "dup@clinic.test"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Patient{FirstName: "C", LastName: "D", Email: "dup@clinic.test"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestSelfProfileUpdateKeepsClinicalFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	userID := int64(42)
	created, err := svc.Create(context.Background(), Patient{
		UserID:     &userID,
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@clinic.test",
		BloodGroup: "O+",
		Allergies:  "penicillin",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSelfProfile(context.Background(), userID, "555-0100", "1 Main St")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "1 Main St", updated.Address)
	assert.Equal(t, "O+", updated.BloodGroup)
	assert.Equal(t, "penicillin", updated.Allergies)
	assert.Equal(t, created.ID, updated.ID)
}

func TestSelfProfileUnknownAccount(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.SelfProfile(context.Background(), 999)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
