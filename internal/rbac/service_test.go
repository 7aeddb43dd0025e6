package rbac

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	perms      map[string]Permission // keyed by "METHOD path"
	nextPermID int64

	roles      map[string]Role
	nextRoleID int64
	rolePerms  map[int64][]int64

	policyVersion int64

	// Error injection
	upsertCalls    int
	failUpsertAt   int // 1-based call index, 0 = never
	failRoleNamed  string
	activePermsErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		perms:      make(map[string]Permission),
		roles:      make(map[string]Role),
		rolePerms:  make(map[int64][]int64),
		nextPermID: 1,
		nextRoleID: 1,
	}
}

// UpsertPermission mirrors the schema: (route, method) is the only unique
// index, matched by the map key. Display names carry no constraint.
func (m *mockRepository) UpsertPermission(ctx context.Context, p Permission) (Permission, bool, error) {
	m.upsertCalls++
	if m.failUpsertAt > 0 && m.upsertCalls == m.failUpsertAt {
		return Permission{}, false, errors.New("boom")
	}
	key := p.Method + " " + p.Route
	existing, ok := m.perms[key]
	if ok {
		existing.Name = p.Name
		existing.Description = p.Description
		existing.Category = p.Category
		existing.IsActive = true
		m.perms[key] = existing
		return existing, false, nil
	}
	p.ID = m.nextPermID
	m.nextPermID++
	p.IsActive = true
	m.perms[key] = p
	return p, true, nil
}

func (m *mockRepository) ListPermissions(ctx context.Context, filter PermissionFilter) ([]Permission, int, error) {
	all, _ := m.ActivePermissions(ctx)
	return all, len(all), nil
}

func (m *mockRepository) ActivePermissions(ctx context.Context) ([]Permission, error) {
	if m.activePermsErr != nil {
		return nil, m.activePermsErr
	}
	out := make([]Permission, 0, len(m.perms))
	for _, p := range m.perms {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) SetPermissionActive(ctx context.Context, id int64, active bool) (Permission, error) {
	for key, p := range m.perms {
		if p.ID == id {
			p.IsActive = active
			m.perms[key] = p
			return p, nil
		}
	}
	return Permission{}, ErrNotFound
}

func (m *mockRepository) UpsertSystemRole(ctx context.Context, name, description string) (Role, bool, error) {
	if m.failRoleNamed != "" && name == m.failRoleNamed {
		return Role{}, false, errors.New("role boom")
	}
	if existing, ok := m.roles[name]; ok {
		existing.Description = description
		existing.IsSystem = true
		m.roles[name] = existing
		return existing, false, nil
	}
	role := Role{ID: m.nextRoleID, Name: name, Description: description, IsSystem: true, IsActive: true}
	m.nextRoleID++
	m.roles[name] = role
	return role, true, nil
}

func (m *mockRepository) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	ids := make([]int64, len(permissionIDs))
	copy(ids, permissionIDs)
	m.rolePerms[roleID] = ids
	return nil
}

func (m *mockRepository) RoleByName(ctx context.Context, name string) (Role, error) {
	role, ok := m.roles[name]
	if !ok {
		return Role{}, ErrNotFound
	}
	role.PermissionIDs = m.rolePerms[role.ID]
	return role, nil
}

func (m *mockRepository) PermissionsForRole(ctx context.Context, roleName string) ([]Permission, error) {
	role, err := m.RoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(role.PermissionIDs))
	for _, id := range role.PermissionIDs {
		want[id] = struct{}{}
	}
	all, _ := m.ActivePermissions(ctx)
	var out []Permission
	for _, p := range all {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepository) BumpPolicyVersion(ctx context.Context) (int64, error) {
	m.policyVersion++
	return m.policyVersion, nil
}

var _ Repository = (*mockRepository)(nil)

func seedCatalog() *Catalog {
	c := NewCatalog()
	c.Register("/api/patients", "GET", "POST")
	c.Register("/api/patients/{id}", "GET", "PUT", "DELETE")
	c.Register("/api/patients/me/profile", "GET", "PUT")
	c.Register("/api/dashboard/summary", "GET")
	c.Register("/api/admin/permissions", "GET", "POST")
	c.Register("/api/admin/seed-rbac", "POST")
	return c
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)
	catalog := seedCatalog()

	first, err := svc.Seed(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, first.Permissions.Total, first.Permissions.Created)
	assert.Zero(t, first.Permissions.Updated)
	assert.Equal(t, 4, first.Roles.Total)
	assert.Equal(t, 4, first.Roles.Created)
	assert.Equal(t, int64(1), first.PolicyVersion)

	snapshot := func() map[string]Permission {
		out := make(map[string]Permission, len(repo.perms))
		for k, v := range repo.perms {
			out[k] = v
		}
		return out
	}
	before := snapshot()

	second, err := svc.Seed(context.Background(), catalog)
	require.NoError(t, err)
	assert.Zero(t, second.Permissions.Created, "second run must create nothing")
	assert.Equal(t, first.Permissions.Total, second.Permissions.Updated)
	assert.Zero(t, second.Roles.Created)
	assert.Equal(t, 4, second.Roles.Updated)
	assert.Equal(t, int64(2), second.PolicyVersion)

	assert.Equal(t, before, snapshot(), "permission documents must be unchanged, same ids included")
}

func TestSeedDefaultCatalogCompletes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)

	report, err := svc.Seed(context.Background(), DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, report.Permissions.Total, report.Permissions.Created)
	assert.Equal(t, 4, report.Roles.Total)

	// The shipped catalog derives repeated display names: GET /api/profile and
	// GET /api/patients/me/profile both synthesize "List Profile" (likewise the
	// PUT pair). Every row must still persist, keyed on (route, method) alone.
	byName := make(map[string]int)
	for _, p := range repo.perms {
		byName[p.Name]++
	}
	assert.GreaterOrEqual(t, byName["List Profile"], 2)
	assert.GreaterOrEqual(t, byName["Update Profile"], 2)
}

func TestSeedReportsOutcome(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)
	var outcomes []error
	svc.OnSeed = func(err error) { outcomes = append(outcomes, err) }

	_, err := svc.Seed(context.Background(), seedCatalog())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0])

	repo.failUpsertAt = repo.upsertCalls + 1
	_, err = svc.Seed(context.Background(), seedCatalog())
	require.Error(t, err)
	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[1])
}

func TestSeedMasterAdminHoldsFullSet(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)

	_, err := svc.Seed(context.Background(), seedCatalog())
	require.NoError(t, err)

	all, err := repo.ActivePermissions(context.Background())
	require.NoError(t, err)
	granted, err := svc.PermissionsForRole(context.Background(), RoleMasterAdmin)
	require.NoError(t, err)
	assert.Equal(t, len(all), len(granted))
}

func TestSeedAdminExcludesReservedPrefixes(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)

	_, err := svc.Seed(context.Background(), seedCatalog())
	require.NoError(t, err)

	granted, err := svc.PermissionsForRole(context.Background(), RoleAdmin)
	require.NoError(t, err)
	all, err := repo.ActivePermissions(context.Background())
	require.NoError(t, err)

	// /api/admin/permissions GET+POST and /api/admin/seed-rbac POST.
	assert.Equal(t, len(all)-3, len(granted))
	for _, p := range granted {
		assert.NotContains(t, p.Route, "/api/admin/permissions")
		assert.NotContains(t, p.Route, "/api/admin/seed-rbac")
	}
}

func TestSyncPermissionsPartialFailure(t *testing.T) {
	repo := newMockRepository()
	repo.failUpsertAt = 5
	svc := NewService(repo, nil, time.Minute)

	report, err := svc.Seed(context.Background(), seedCatalog())
	require.Error(t, err)
	assert.Equal(t, 4, report.Permissions.Total, "exactly N-1 upserts before the failure")
	assert.Zero(t, report.Roles.Total, "role assignment must not run after a failed synthesis")
	assert.Zero(t, repo.policyVersion, "policy version must not bump on failure")
	// The failing catalog row is pinned in the error for operator recovery.
	assert.Contains(t, err.Error(), "upsert permission")
}

func TestAssignTemplatesCommittedBeforeFailureStay(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)
	_, _, err := svc.SyncPermissions(context.Background(), seedCatalog())
	require.NoError(t, err)

	repo.failRoleNamed = RoleDoctor
	_, err = svc.AssignTemplates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), RoleDoctor)

	_, err = repo.RoleByName(context.Background(), RoleMasterAdmin)
	assert.NoError(t, err, "templates committed before the failure remain committed")
	_, err = repo.RoleByName(context.Background(), RoleAdmin)
	assert.NoError(t, err)
	_, err = repo.RoleByName(context.Background(), RolePatient)
	assert.ErrorIs(t, err, ErrNotFound, "assignment stops at the failing template")
}

func TestSeedEmptyCatalogRefusesToRun(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.Minute)

	_, err := svc.Seed(context.Background(), NewCatalog())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Empty(t, repo.roles, "an empty catalog must never wipe role permissions")
}
