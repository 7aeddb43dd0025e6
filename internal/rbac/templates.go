package rbac

import "strings"

// Template describes one built-in system role: its identity plus the
// membership rule applied to the full permission set on every seed run.
type Template struct {
	Name        string
	Description string
	Member      func(Permission) bool
}

// adminExcludedPrefixes lists the system-administration surface withheld from
// the admin template: permission management and RBAC reseeding stay exclusive
// to master_admin.
var adminExcludedPrefixes = []string{
	"/api/admin/permissions",
	"/api/admin/seed-rbac",
}

// doctorCategories is the fixed allow-list for the doctor template.
var doctorCategories = map[string]struct{}{
	"patients":      {},
	"appointments":  {},
	"prescriptions": {},
	"ehr":           {},
	"billing":       {},
	"inventory":     {},
	"email":         {},
	"profile":       {},
	"dashboard":     {},
}

// patientCategories are granted to patients outright; patients additionally
// reach patients-category routes carrying the self-profile marker.
var patientCategories = map[string]struct{}{
	"profile":   {},
	"dashboard": {},
}

// selfProfileSegment is the exact path segment granting a patient access to
// their own profile sub-resource without exposing the patient-management
// surface. Matched segment-wise, never as a substring: a route like
// /api/patients/:id/medications must not qualify.
const selfProfileSegment = "me"

func hasPathSegment(route, want string) bool {
	for _, seg := range strings.Split(route, "/") {
		if seg == want {
			return true
		}
	}
	return false
}

// SystemTemplates returns the four built-in role templates in assignment
// order. Membership is computed from scratch on every run: manual additions
// to a system role do not survive a reseed.
func SystemTemplates() []Template {
	return []Template{
		{
			Name:        RoleMasterAdmin,
			Description: "Full access to every permission, including RBAC administration.",
			Member:      func(Permission) bool { return true },
		},
		{
			Name:        RoleAdmin,
			Description: "Clinic administration without permission management or RBAC reseeding.",
			Member: func(p Permission) bool {
				for _, prefix := range adminExcludedPrefixes {
					if strings.HasPrefix(p.Route, prefix) {
						return false
					}
				}
				return true
			},
		},
		{
			Name:        RoleDoctor,
			Description: "Clinical operations: patients, appointments, prescriptions, billing and related tooling.",
			Member: func(p Permission) bool {
				_, ok := doctorCategories[p.Category]
				return ok
			},
		},
		{
			Name:        RolePatient,
			Description: "Self-service: own profile, dashboard and self-profile patient routes.",
			Member: func(p Permission) bool {
				if _, ok := patientCategories[p.Category]; ok {
					return true
				}
				return p.Category == "patients" && hasPathSegment(p.Route, selfProfileSegment)
			},
		},
	}
}
