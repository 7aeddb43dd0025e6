package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

type mockRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User), sessions: make(map[string]int64)}
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *mockRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	m.sessions[id] = userID
	return nil
}

func (m *mockRepo) DeleteSession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

var _ Repository = (*mockRepo)(nil)

func testSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "clinicflow_session", "test-secret", time.Hour, false)
}

func testHandler(t *testing.T, repo Repository) (*Handler, *shared.SessionManager) {
	t.Helper()
	sm := testSessionManager(t)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewHandler(logger, NewService(repo), sm), sm
}

func seedUser(t *testing.T, repo *mockRepo, email, password, role string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{
		ID:           int64(len(repo.users) + 1),
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	repo.users[email] = user
	return user
}

func doLogin(t *testing.T, h *Handler, sm *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.HandleLoginForTest(rec, req)
	return rec, sess
}

func TestLoginSetsSessionPrincipal(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@clinic.test", "password123", "doctor")
	h, sm := testHandler(t, repo)

	rec, sess := doLogin(t, h, sm, `{"email":"doc@clinic.test","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp principalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "doc@clinic.test", resp.Email)
	assert.Equal(t, "doctor", resp.Role)

	assert.Equal(t, "1", sess.User())
	assert.Equal(t, "doctor", sess.Role())
	assert.Contains(t, repo.sessions, sess.ID)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@clinic.test", "password123", "doctor")
	h, sm := testHandler(t, repo)

	rec, sess := doLogin(t, h, sm, `{"email":"doc@clinic.test","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
	assert.Empty(t, sess.User())
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := newMockRepo()
	user := seedUser(t, repo, "gone@clinic.test", "password123", "admin")
	user.IsActive = false
	h, sm := testHandler(t, repo)

	rec, _ := doLogin(t, h, sm, `{"email":"gone@clinic.test","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesBody(t *testing.T) {
	h, sm := testHandler(t, newMockRepo())

	rec, _ := doLogin(t, h, sm, `{"email":"not-an-email","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeWithoutSessionIsUnauthorized(t *testing.T) {
	h, _ := testHandler(t, newMockRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	h.HandleMeForTest(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"no session"}`, rec.Body.String())
}

func TestMeReportsPrincipal(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "pat@clinic.test", "password123", "patient")
	h, sm := testHandler(t, repo)

	_, sess := doLogin(t, h, sm, `{"email":"pat@clinic.test","password":"password123"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.HandleMeForTest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"role":"patient"}`, rec.Body.String())
}
