package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEntriesDeterministic(t *testing.T) {
	build := func() []RouteEntry {
		c := NewCatalog()
		c.Register("/api/patients", "GET", "POST")
		c.Register("/api/appointments", "POST")
		c.Register("/api/appointments", "GET")
		entries, err := c.Entries()
		require.NoError(t, err)
		return entries
	}

	first := build()
	second := build()
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "/api/appointments", first[0].Path)
	assert.Equal(t, []string{"GET", "POST"}, first[0].Methods)
}

func TestCatalogNormalizesDynamicSegments(t *testing.T) {
	c := NewCatalog()
	c.Register("/api/patients/{id}", "GET")
	c.Register("/api/patients/:id", "PUT")
	c.Register("/api/patients/{id:[0-9]+}", "DELETE")

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1, "same logical route must not duplicate")
	assert.Equal(t, "/api/patients/:id", entries[0].Path)
	assert.Equal(t, []string{"GET", "PUT", "DELETE"}, entries[0].Methods)
}

func TestCatalogExcludePrunesDebugRoutes(t *testing.T) {
	c := NewCatalog()
	c.Register("/api/patients", "GET")
	c.Register("/api/debug/session", "GET")
	c.Exclude("/api/debug")

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/patients", entries[0].Path)
}

func TestCatalogUnknownMethodsDropped(t *testing.T) {
	c := NewCatalog()
	c.Register("/api/patients", "GET", "TRACE", "get")

	entries, err := c.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"GET"}, entries[0].Methods)
}

func TestEmptyCatalogFails(t *testing.T) {
	c := NewCatalog()
	_, err := c.Entries()
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	// A catalog reduced to nothing by the denylist is just as fatal.
	c.Register("/api/debug/session", "GET")
	c.Exclude("/api/debug")
	_, err = c.Entries()
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestDefaultCatalogCoversAdminSurface(t *testing.T) {
	entries, err := DefaultCatalog().Entries()
	require.NoError(t, err)

	paths := make(map[string][]string, len(entries))
	for _, e := range entries {
		paths[e.Path] = e.Methods
	}
	assert.Equal(t, []string{"GET", "POST", "PUT"}, paths["/api/admin/permissions"])
	assert.Equal(t, []string{"POST"}, paths["/api/admin/seed-rbac"])
	assert.Contains(t, paths, "/api/patients/me/profile")
	assert.NotContains(t, paths, "/api/debug/session")
}
