package auth

import (
	"slices"
	"strings"

	"liyu1981.xyz/maintenance-service/pkg/models"
)

// Rule grants Roles access to routes matching Method and Path. Method "*"
// matches any method. Path is a gin route pattern; a trailing "*" turns it
// into a prefix match.
type Rule struct {
	Method string
	Path   string
	Roles  []models.Role
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "*" && !strings.EqualFold(r.Method, method) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Path, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return r.Path == path
}

// Policy maps routes to the roles allowed on them. The first matching rule
// wins; routes without a rule fall back to DefaultRoles.
type Policy struct {
	Rules        []Rule
	DefaultRoles []models.Role
}

func (p Policy) RolesFor(method, path string) []models.Role {
	for _, rule := range p.Rules {
		if rule.matches(method, path) {
			return rule.Roles
		}
	}
	return p.DefaultRoles
}

func (p Policy) Allows(method, path string, role models.Role) bool {
	return slices.Contains(p.RolesFor(method, path), role)
}
