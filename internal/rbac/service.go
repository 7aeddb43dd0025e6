package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service orchestrates the RBAC bootstrap pipeline and permission queries.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	seedTimeout time.Duration

	// OnSeed, when set, is invoked once per Seed call with the run's outcome
	// (nil on success). Used to feed seed-run counters.
	OnSeed func(err error)
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger, seedTimeout time.Duration) *Service {
	if seedTimeout <= 0 {
		seedTimeout = time.Minute
	}
	return &Service{repo: repo, logger: logger, seedTimeout: seedTimeout}
}

// SyncPermissions derives one permission per (route, method) in catalog order
// and upserts each atomically. A single persistence failure aborts the run;
// the returned counts reflect the upserts committed before the failure so an
// operator can reason about a partial seed.
func (s *Service) SyncPermissions(ctx context.Context, catalog *Catalog) (SyncCounts, RouteStats, error) {
	var counts SyncCounts
	entries, err := catalog.Entries()
	if err != nil {
		return counts, RouteStats{}, err
	}

	categories := make(map[string]struct{})
	for _, entry := range entries {
		for _, method := range entry.Methods {
			d := Derive(entry.Path, method)
			categories[d.Category] = struct{}{}
			_, created, err := s.repo.UpsertPermission(ctx, Permission{
				Route:       entry.Path,
				Method:      method,
				Name:        d.Name,
				Description: d.Description,
				Category:    d.Category,
			})
			if err != nil {
				return counts, RouteStats{Scanned: len(entries), Categories: len(categories)},
					fmt.Errorf("rbac: upsert permission %s: %w", entryKey(entry.Path, method), err)
			}
			if created {
				counts.Created++
			} else {
				counts.Updated++
			}
			counts.Total++
		}
	}
	stats := RouteStats{Scanned: len(entries), Categories: len(categories)}
	if s.logger != nil {
		s.logger.Info("permissions synthesized",
			slog.Int("created", counts.Created),
			slog.Int("updated", counts.Updated),
			slog.Int("routes", stats.Scanned))
	}
	return counts, stats, nil
}

// AssignTemplates recomputes the four system roles from the current active
// permission set. Templates commit one at a time; a failure aborts at the
// failing template and leaves earlier templates committed.
func (s *Service) AssignTemplates(ctx context.Context) (SyncCounts, error) {
	var counts SyncCounts
	perms, err := s.repo.ActivePermissions(ctx)
	if err != nil {
		return counts, fmt.Errorf("rbac: load active permissions: %w", err)
	}
	for _, tpl := range SystemTemplates() {
		var ids []int64
		for _, p := range perms {
			if tpl.Member(p) {
				ids = append(ids, p.ID)
			}
		}
		role, created, err := s.repo.UpsertSystemRole(ctx, tpl.Name, tpl.Description)
		if err != nil {
			return counts, fmt.Errorf("rbac: upsert role %s: %w", tpl.Name, err)
		}
		if err := s.repo.ReplaceRolePermissions(ctx, role.ID, ids); err != nil {
			return counts, fmt.Errorf("rbac: replace permissions for role %s: %w", tpl.Name, err)
		}
		if created {
			counts.Created++
		} else {
			counts.Updated++
		}
		counts.Total++
		if s.logger != nil {
			s.logger.Info("system role assigned", slog.String("role", tpl.Name), slog.Int("permissions", len(ids)))
		}
	}
	return counts, nil
}

// Seed runs the full pipeline: catalog -> permission synthesis -> role
// template assignment -> policy version bump. The run is bounded by the
// configured timeout; on failure the report still carries the progress made,
// and role assignment never runs after a failed synthesis.
func (s *Service) Seed(ctx context.Context, catalog *Catalog) (SeedReport, error) {
	report, err := s.seed(ctx, catalog)
	if s.OnSeed != nil {
		s.OnSeed(err)
	}
	return report, err
}

func (s *Service) seed(ctx context.Context, catalog *Catalog) (SeedReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.seedTimeout)
	defer cancel()

	var report SeedReport
	permCounts, stats, err := s.SyncPermissions(ctx, catalog)
	report.Permissions = permCounts
	report.Routes = stats
	if err != nil {
		return report, err
	}

	roleCounts, err := s.AssignTemplates(ctx)
	report.Roles = roleCounts
	if err != nil {
		return report, err
	}

	version, err := s.repo.BumpPolicyVersion(ctx)
	if err != nil {
		return report, fmt.Errorf("rbac: bump policy version: %w", err)
	}
	report.PolicyVersion = version
	return report, nil
}

// ListPermissions exposes paginated permission listings.
func (s *Service) ListPermissions(ctx context.Context, filter PermissionFilter) ([]Permission, int, error) {
	return s.repo.ListPermissions(ctx, filter)
}

// TogglePermission flips a permission's active flag by id.
func (s *Service) TogglePermission(ctx context.Context, id int64, active bool) (Permission, error) {
	return s.repo.SetPermissionActive(ctx, id, active)
}

// PermissionsForRole returns the active permissions a role currently holds.
func (s *Service) PermissionsForRole(ctx context.Context, roleName string) ([]Permission, error) {
	return s.repo.PermissionsForRole(ctx, roleName)
}
