package rbac

import (
	"fmt"
	"strings"
)

// apiRoot is stripped before category derivation.
const apiRoot = "/api"

// categoryOverrides pins specific path prefixes to a category. The default
// rule (first meaningful segment after the API root) covers everything else.
// Changing this table silently reclassifies permissions on the next seed run,
// so it is deliberately explicit and covered by tests.
var categoryOverrides = map[string]string{
	"/api/auth": "auth",
}

// Derivation is the display metadata synthesized for one (route, method).
type Derivation struct {
	Category    string
	Name        string
	Description string
}

// Derive computes category, name and description for a catalog row. The
// mapping is pure and idempotent: the same (path, method) always yields the
// same derivation. Names are display labels only and may repeat across
// routes; (route, method) remains the sole key.
func Derive(path, method string) Derivation {
	category := CategoryOf(path)
	noun := resourceNoun(path)
	intent := verbIntent(method, path)
	return Derivation{
		Category:    category,
		Name:        fmt.Sprintf("%s %s", intent, noun),
		Description: fmt.Sprintf("Allows the caller to %s %s using %s %s.", strings.ToLower(intent), strings.ToLower(noun), method, path),
	}
}

// CategoryOf derives the permission category: the first path segment after
// the API root that is not a dynamic placeholder, unless an explicit override
// matches. Routes under /api/admin keep the "admin" category so the doctor
// and patient templates can exclude the whole management surface.
func CategoryOf(path string) string {
	for prefix, category := range categoryOverrides {
		if strings.HasPrefix(path, prefix) {
			return category
		}
	}
	for _, seg := range meaningfulSegments(path) {
		return seg
	}
	return "general"
}

func meaningfulSegments(path string) []string {
	trimmed := strings.TrimPrefix(path, apiRoot)
	var out []string
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" || IsPlaceholder(seg) {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// resourceNoun picks the dominant resource of a path: the deepest meaningful
// segment, title-cased. `/api/patients/me/profile` names "Profile",
// `/api/admin/users` names "Users".
func resourceNoun(path string) string {
	segs := meaningfulSegments(path)
	if len(segs) == 0 {
		return "Resource"
	}
	noun := segs[len(segs)-1]
	noun = strings.ReplaceAll(noun, "-", " ")
	words := strings.Fields(noun)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// verbIntent maps an HTTP verb to its display intent. A GET on a route with a
// dynamic segment reads a single record, otherwise it lists.
func verbIntent(method, path string) string {
	switch method {
	case "GET":
		if strings.Contains(path, "/:") {
			return "View"
		}
		return "List"
	case "POST":
		return "Create"
	case "PUT", "PATCH":
		return "Update"
	case "DELETE":
		return "Delete"
	default:
		return "Access"
	}
}
