package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

func sessionWithRole(t *testing.T, role string) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("42")
	sess.SetRole(role)
	return sess
}

func TestRequireRolesMatrix(t *testing.T) {
	allowLists := [][]string{
		{RoleMasterAdmin},
		{RoleMasterAdmin, RoleAdmin},
		{RoleMasterAdmin, RoleAdmin, RoleDoctor},
	}
	principals := []string{"", RolePatient, RoleDoctor, RoleAdmin, RoleMasterAdmin}

	for _, allowed := range allowLists {
		allowedSet := make(map[string]struct{}, len(allowed))
		for _, role := range allowed {
			allowedSet[role] = struct{}{}
		}
		for _, role := range principals {
			gate := Middleware{}
			handler := gate.RequireRoles(allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/permissions", nil)
			if role != "" {
				sess := sessionWithRole(t, role)
				req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
			}

			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			switch {
			case role == "":
				assert.Equal(t, http.StatusUnauthorized, res.Code, "missing session allowed=%v", allowed)
			default:
				if _, ok := allowedSet[role]; ok {
					assert.Equal(t, http.StatusOK, res.Code, "role=%s allowed=%v", role, allowed)
				} else {
					assert.Equal(t, http.StatusForbidden, res.Code, "role=%s allowed=%v", role, allowed)
				}
			}
		}
	}
}

func TestRequireRolesDistinguishesDenialReasons(t *testing.T) {
	gate := Middleware{}
	handler := gate.RequireRoles(RoleMasterAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No session at all.
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "no session")

	// Authenticated but without a role claim still counts as unauthenticated.
	sess := sessionWithRole(t, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// Authenticated with the wrong role.
	sess = sessionWithRole(t, RolePatient)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "role not permitted")
}

func TestRequireRolesEmptyListPermits(t *testing.T) {
	gate := Middleware{}
	handler := gate.RequireRoles()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, res.Code)
}
