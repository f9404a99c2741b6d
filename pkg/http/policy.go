package http

import (
	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

var (
	adminOnly = []models.Role{models.RoleAdmin}
	anyRole   = []models.Role{models.RoleAdmin, models.RoleUser}
)

// DefaultPolicy restricts user management and the activity log to admins.
// Every other API route is open to any signed in role.
func DefaultPolicy() auth.Policy {
	return auth.Policy{
		Rules: []auth.Rule{
			{Method: "*", Path: "/api/users*", Roles: adminOnly},
			{Method: "GET", Path: "/api/activity-logs", Roles: adminOnly},
		},
		DefaultRoles: anyRole,
	}
}
