package rbac

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCatalogUnavailable signals that no routes could be enumerated. Callers
// must treat this as fatal: seeding from an empty catalog would wipe every
// system role's permission list.
var ErrCatalogUnavailable = errors.New("rbac: route catalog unavailable")

// RouteEntry is one catalog row: a normalized path and the HTTP verbs it
// serves.
type RouteEntry struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

var knownMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {},
}

// Catalog is an explicit, centrally declared route manifest. Modules register
// their endpoints programmatically; the catalog deduplicates by normalized
// path and merges method sets, so the same logical route never yields two
// entries.
type Catalog struct {
	routes map[string]map[string]struct{}
	deny   []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{routes: make(map[string]map[string]struct{})}
}

// Register adds a route and its methods. Dynamic segments in either chi
// (`{id}`) or colon (`:id`) style normalize to the colon form. Unknown verbs
// are dropped.
func (c *Catalog) Register(path string, methods ...string) {
	path = NormalizePath(path)
	if path == "" {
		return
	}
	set, ok := c.routes[path]
	if !ok {
		set = make(map[string]struct{})
		c.routes[path] = set
	}
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if _, known := knownMethods[m]; known {
			set[m] = struct{}{}
		}
	}
}

// Exclude removes any route matching one of the given prefixes. Operators use
// this to prune debug/test endpoints before seeding.
func (c *Catalog) Exclude(prefixes ...string) {
	c.deny = append(c.deny, prefixes...)
}

// Entries returns the deterministic catalog snapshot, sorted by path with
// methods in verb order. It fails with ErrCatalogUnavailable rather than
// returning an empty list.
func (c *Catalog) Entries() ([]RouteEntry, error) {
	entries := make([]RouteEntry, 0, len(c.routes))
	for path, set := range c.routes {
		if c.denied(path) || len(set) == 0 {
			continue
		}
		methods := make([]string, 0, len(set))
		for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
			if _, ok := set[m]; ok {
				methods = append(methods, m)
			}
		}
		entries = append(entries, RouteEntry{Path: path, Methods: methods})
	}
	if len(entries) == 0 {
		return nil, ErrCatalogUnavailable
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (c *Catalog) denied(path string) bool {
	for _, prefix := range c.deny {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NormalizePath canonicalises a route path: trims trailing slashes and maps
// every dynamic segment to the stable `:name` placeholder so the same logical
// route cannot produce duplicate catalog entries.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return path
	}
	path = strings.TrimRight(path, "/")
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
			// chi regex params look like {id:[0-9]+}.
			if idx := strings.IndexByte(name, ':'); idx >= 0 {
				name = name[:idx]
			}
			segments[i] = ":" + name
		}
	}
	return strings.Join(segments, "/")
}

// IsPlaceholder reports whether a path segment is a dynamic parameter.
func IsPlaceholder(segment string) bool {
	return strings.HasPrefix(segment, ":")
}

// entryKey is used in error reporting to pin failures to one catalog row.
func entryKey(path, method string) string {
	return fmt.Sprintf("%s %s", method, path)
}
