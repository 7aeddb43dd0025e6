package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryDerivation(t *testing.T) {
	cases := []struct {
		path     string
		category string
	}{
		{"/api/patients", "patients"},
		{"/api/patients/:id", "patients"},
		{"/api/patients/me/profile", "patients"},
		{"/api/admin/users", "admin"},
		{"/api/admin/users/:id", "admin"},
		{"/api/admin/permissions", "admin"},
		{"/api/admin/seed-rbac", "admin"},
		{"/api/dashboard/summary", "dashboard"},
		{"/api/email/send", "email"},
		{"/api/profile", "profile"},
		{"/api/auth/login", "auth"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.category, CategoryOf(tc.path), "path %s", tc.path)
	}
}

func TestDeriveNames(t *testing.T) {
	cases := []struct {
		path   string
		method string
		name   string
	}{
		{"/api/patients", "GET", "List Patients"},
		{"/api/patients/:id", "GET", "View Patients"},
		{"/api/patients", "POST", "Create Patients"},
		{"/api/patients/:id", "PUT", "Update Patients"},
		{"/api/patients/:id", "DELETE", "Delete Patients"},
		{"/api/admin/seed-rbac", "POST", "Create Seed Rbac"},
		{"/api/patients/me/profile", "GET", "List Profile"},
	}
	for _, tc := range cases {
		d := Derive(tc.path, tc.method)
		assert.Equal(t, tc.name, d.Name, "%s %s", tc.method, tc.path)
		assert.NotEmpty(t, d.Description)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	first := Derive("/api/appointments/:id", "PUT")
	second := Derive("/api/appointments/:id", "PUT")
	assert.Equal(t, first, second)
}
