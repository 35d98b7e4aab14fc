package guard

import (
	"sort"
	"strings"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
)

// DashboardPath is the root of the dashboard namespace.
const DashboardPath = "/dashboard"

// Route binds a path pattern to its access requirement. A pattern ending in "/"
// matches every path below it; any other pattern matches exactly.
type Route struct {
	Pattern     string
	Requirement Requirement
}

// RouteTable resolves the requirement for a request path by longest match.
type RouteTable struct {
	exact  map[string]Requirement
	prefix []Route
}

// NewRouteTable builds a table from routes. Later duplicates replace earlier ones.
func NewRouteTable(routes ...Route) *RouteTable {
	t := &RouteTable{exact: make(map[string]Requirement, len(routes))}
	for _, r := range routes {
		if strings.HasSuffix(r.Pattern, "/") && r.Pattern != "/" {
			t.prefix = append(t.prefix, r)
			continue
		}
		t.exact[r.Pattern] = r.Requirement
	}
	sort.SliceStable(t.prefix, func(i, j int) bool {
		return len(t.prefix[i].Pattern) > len(t.prefix[j].Pattern)
	})
	return t
}

// Lookup returns the requirement for path. Unlisted paths are public.
func (t *RouteTable) Lookup(path string) Requirement {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if req, ok := t.exact[path]; ok {
		return req
	}
	for _, r := range t.prefix {
		if strings.HasPrefix(path, r.Pattern) {
			return r.Requirement
		}
	}
	return PublicAccess()
}

// DefaultRoutes is the marketplace routing surface.
func DefaultRoutes() *RouteTable {
	public := PublicAccess()
	anyUser := AnyUser()
	adminOnly := Roles(domainauth.RoleAdmin)

	return NewRouteTable(
		Route{Pattern: "/", Requirement: public},
		Route{Pattern: "/services", Requirement: public},
		Route{Pattern: "/about", Requirement: public},
		Route{Pattern: "/contact", Requirement: public},
		Route{Pattern: "/login", Requirement: public},
		Route{Pattern: "/signup", Requirement: public},
		Route{Pattern: "/register", Requirement: public},
		Route{Pattern: "/verify-phone", Requirement: public},
		Route{Pattern: "/forgot-password", Requirement: public},
		Route{Pattern: "/logout", Requirement: public},

		Route{Pattern: "/profile", Requirement: anyUser},
		Route{Pattern: "/settings", Requirement: anyUser},
		Route{Pattern: "/settings/", Requirement: anyUser},
		Route{Pattern: "/courses", Requirement: anyUser},
		Route{Pattern: "/bookings", Requirement: anyUser},
		Route{Pattern: "/sessions", Requirement: anyUser},
		Route{Pattern: "/reviews", Requirement: anyUser},
		Route{Pattern: "/payments", Requirement: anyUser},
		Route{Pattern: DashboardPath + "/", Requirement: anyUser},

		Route{Pattern: DashboardPath, Requirement: adminOnly},
		Route{Pattern: "/users", Requirement: adminOnly},
		Route{Pattern: "/disputes", Requirement: adminOnly},
	)
}
