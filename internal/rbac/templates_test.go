package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticPermissions builds one permission per category plus the admin
// management surface and the patient self-profile route.
func syntheticPermissions() []Permission {
	routes := []struct {
		route  string
		method string
	}{
		{"/api/patients", "GET"},
		{"/api/patients/me/profile", "GET"},
		{"/api/appointments", "GET"},
		{"/api/billing", "GET"},
		{"/api/prescriptions", "GET"},
		{"/api/inventory", "GET"},
		{"/api/email/send", "POST"},
		{"/api/profile", "GET"},
		{"/api/dashboard/summary", "GET"},
		{"/api/admin/users", "GET"},
		{"/api/admin/roles", "GET"},
		{"/api/admin/permissions", "POST"},
		{"/api/admin/seed-rbac", "POST"},
	}
	perms := make([]Permission, 0, len(routes))
	for i, r := range routes {
		d := Derive(r.route, r.method)
		perms = append(perms, Permission{
			ID:       int64(i + 1),
			Route:    r.route,
			Method:   r.method,
			Category: d.Category,
			Name:     d.Name,
			IsActive: true,
		})
	}
	return perms
}

func membership(t *testing.T, name string, perms []Permission) map[string]bool {
	t.Helper()
	var tpl *Template
	for _, candidate := range SystemTemplates() {
		if candidate.Name == name {
			c := candidate
			tpl = &c
			break
		}
	}
	require.NotNil(t, tpl, "template %s missing", name)
	out := make(map[string]bool, len(perms))
	for _, p := range perms {
		out[p.Method+" "+p.Route] = tpl.Member(p)
	}
	return out
}

func TestMasterAdminHoldsEverything(t *testing.T) {
	perms := syntheticPermissions()
	granted := membership(t, RoleMasterAdmin, perms)
	for key, ok := range granted {
		assert.True(t, ok, "master_admin must hold %s", key)
	}
}

func TestAdminExcludesRBACManagement(t *testing.T) {
	perms := syntheticPermissions()
	granted := membership(t, RoleAdmin, perms)

	assert.False(t, granted["POST /api/admin/permissions"])
	assert.False(t, granted["POST /api/admin/seed-rbac"])

	held := 0
	for key, ok := range granted {
		if ok {
			held++
			continue
		}
		assert.Contains(t, []string{"POST /api/admin/permissions", "POST /api/admin/seed-rbac"}, key)
	}
	assert.Equal(t, len(perms)-2, held, "admin holds everything minus the two excluded prefixes")
}

func TestDoctorScopedToClinicalCategories(t *testing.T) {
	perms := syntheticPermissions()
	granted := membership(t, RoleDoctor, perms)

	assert.True(t, granted["GET /api/patients"])
	assert.True(t, granted["GET /api/appointments"])
	assert.True(t, granted["GET /api/billing"])
	assert.True(t, granted["GET /api/prescriptions"])
	assert.True(t, granted["GET /api/inventory"])
	assert.True(t, granted["POST /api/email/send"])
	assert.True(t, granted["GET /api/profile"])
	assert.True(t, granted["GET /api/dashboard/summary"])

	assert.False(t, granted["GET /api/admin/users"], "doctor must not reach the admin category")
	assert.False(t, granted["GET /api/admin/roles"])
	assert.False(t, granted["POST /api/admin/permissions"])
	assert.False(t, granted["POST /api/admin/seed-rbac"])
}

func TestPatientScopedToSelfService(t *testing.T) {
	perms := syntheticPermissions()
	granted := membership(t, RolePatient, perms)

	expected := map[string]bool{
		"GET /api/profile":             true,
		"GET /api/dashboard/summary":   true,
		"GET /api/patients/me/profile": true,
	}
	for key, ok := range granted {
		assert.Equal(t, expected[key], ok, "patient membership for %s", key)
	}
}

func TestPatientSelfProfileMatchesWholeSegmentOnly(t *testing.T) {
	perms := []Permission{
		{ID: 1, Route: "/api/patients/me/profile", Method: "GET", Category: "patients", IsActive: true},
		{ID: 2, Route: "/api/patients/:id/medications", Method: "GET", Category: "patients", IsActive: true},
		{ID: 3, Route: "/api/patients/metrics", Method: "GET", Category: "patients", IsActive: true},
	}
	granted := membership(t, RolePatient, perms)

	assert.True(t, granted["GET /api/patients/me/profile"])
	assert.False(t, granted["GET /api/patients/:id/medications"],
		"a segment merely containing 'me' must not grant patient access")
	assert.False(t, granted["GET /api/patients/metrics"])
}

func TestSystemTemplateOrderAndNames(t *testing.T) {
	templates := SystemTemplates()
	require.Len(t, templates, 4)
	names := []string{templates[0].Name, templates[1].Name, templates[2].Name, templates[3].Name}
	assert.Equal(t, []string{RoleMasterAdmin, RoleAdmin, RoleDoctor, RolePatient}, names)
}
