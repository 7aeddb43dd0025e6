package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

type mockRepo struct {
	users map[int64]User
	roles map[int64]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int64]User), roles: make(map[int64]string)}
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(m.users), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) AssignRole(ctx context.Context, userID, roleID int64) (User, error) {
	name, ok := m.roles[roleID]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	u, ok := m.users[userID]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	u.RoleID = &roleID
	u.RoleName = name
	m.users[userID] = u
	return u, nil
}

func (m *mockRepo) GetProfile(ctx context.Context, id int64) (Profile, error) {
	u, ok := m.users[id]
	if !ok {
		return Profile{}, httpx.ErrNotFound
	}
	return Profile{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, RoleName: u.RoleName}, nil
}

func (m *mockRepo) UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) (Profile, error) {
	u, ok := m.users[id]
	if !ok {
		return Profile{}, httpx.ErrNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return Profile{ID: u.ID, Email: u.Email, FirstName: firstName, LastName: lastName, Phone: phone, RoleName: u.RoleName}, nil
}

var _ RepositoryPort = (*mockRepo)(nil)

func TestAssignRole(t *testing.T) {
	repo := newMockRepo()
	repo.roles[7] = "doctor"
	repo.users[3] = User{ID: 3, Email: "user@clinic.test", RoleName: "patient"}
	svc := NewService(repo)

	user, err := svc.AssignRole(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, "doctor", user.RoleName)
	require.NotNil(t, user.RoleID)
	assert.Equal(t, int64(7), *user.RoleID)
}

func TestAssignRoleUnknownRole(t *testing.T) {
	repo := newMockRepo()
	repo.users[3] = User{ID: 3}
	svc := NewService(repo)

	_, err := svc.AssignRole(context.Background(), 3, 99)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAssignRoleValidatesIDs(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.AssignRole(context.Background(), 0, 1)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateProfileRequiresFirstName(t *testing.T) {
	repo := newMockRepo()
	repo.users[1] = User{ID: 1}
	svc := NewService(repo)

	_, err := svc.UpdateProfile(context.Background(), 1, "   ", "Doe", "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateProfileTrimsFields(t *testing.T) {
	repo := newMockRepo()
	repo.users[1] = User{ID: 1, Email: "p@clinic.test"}
	svc := NewService(repo)

	profile, err := svc.UpdateProfile(context.Background(), 1, " Jane ", " Doe ", " 555-0100 ")
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.FirstName)
	assert.Equal(t, "Doe", profile.LastName)
	assert.Equal(t, "555-0100", profile.Phone)
}
