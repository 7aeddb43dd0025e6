package rbac

// DefaultCatalog enumerates every externally reachable API endpoint. The
// manifest is declared centrally instead of being reflected off the router so
// the catalog stays explicit, testable and independent of routing internals;
// it must be kept in step with the routes mounted in internal/app. Debug
// endpoints are excluded before seeding.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Register("/api/auth/login", "POST")
	c.Register("/api/auth/logout", "POST")
	c.Register("/api/auth/me", "GET")

	c.Register("/api/admin/permissions", "GET", "POST", "PUT")
	c.Register("/api/admin/seed-rbac", "POST")
	c.Register("/api/admin/roles", "GET", "POST", "PUT", "DELETE")
	c.Register("/api/admin/users", "GET")
	c.Register("/api/admin/users/{id}", "PUT")

	c.Register("/api/patients", "GET", "POST")
	c.Register("/api/patients/{id}", "GET", "PUT", "DELETE")
	c.Register("/api/patients/me/profile", "GET", "PUT")

	c.Register("/api/appointments", "GET", "POST")
	c.Register("/api/appointments/{id}", "GET", "PUT", "DELETE")

	c.Register("/api/billing", "GET", "POST")
	c.Register("/api/billing/{id}", "GET")

	c.Register("/api/prescriptions", "GET", "POST")
	c.Register("/api/prescriptions/{id}", "GET")

	c.Register("/api/inventory", "GET")
	c.Register("/api/inventory/{id}", "PUT")

	c.Register("/api/email/send", "POST")

	c.Register("/api/profile", "GET", "PUT")
	c.Register("/api/dashboard/summary", "GET")

	// Local-only diagnostics must never become permissions.
	c.Register("/api/debug/session", "GET")
	c.Exclude("/api/debug")
	c.Register("/api/jobs/health", "GET")
	c.Exclude("/api/jobs")

	return c
}
