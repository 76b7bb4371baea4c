package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
)

type actorKey struct{}

// Actor is the authenticated till user behind a request.
type Actor struct {
	UserID   string
	Username string
	Role     string
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

func UserIDFromContext(ctx context.Context) string {
	actor, _ := ActorFromContext(ctx)
	return actor.UserID
}

func RoleFromContext(ctx context.Context) string {
	actor, _ := ActorFromContext(ctx)
	return actor.Role
}

func UsernameFromContext(ctx context.Context) string {
	actor, _ := ActorFromContext(ctx)
	return actor.Username
}

// WithUserID sets only the user id, keeping any role already present.
func WithUserID(ctx context.Context, userID string) context.Context {
	actor, _ := ActorFromContext(ctx)
	actor.UserID = userID
	return WithActor(ctx, actor)
}

// WithRole sets only the role, keeping any user id already present.
func WithRole(ctx context.Context, role string) context.Context {
	actor, _ := ActorFromContext(ctx)
	actor.Role = role
	return WithActor(ctx, actor)
}

// ActorID parses the authenticated user id set by Auth.
func ActorID(ctx context.Context) (uuid.UUID, error) {
	raw := UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
