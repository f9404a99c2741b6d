package models

import "context"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleAdmin, RoleUser:
		return Role(value), true
	default:
		return "", false
	}
}

// Actor is the authenticated identity a request runs as.
type Actor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type actorContextKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok || actor.ID == 0 {
		return Actor{}, false
	}
	return actor, true
}
