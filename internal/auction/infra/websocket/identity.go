package websocket

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/clanarena/draftroom/internal/auction/application"
	"github.com/clanarena/draftroom/internal/auction/domain"
)

var errBadToken = errors.New("malformed identity token")

// TokenIdentityResolver resolves connection identity from a pre-signed token
// of the form "<userID>:<role>:<name>" issued by the platform's auth layer.
// The engine itself never authenticates, it only consumes resolved identities
type TokenIdentityResolver struct{}

var _ application.IdentityResolver = (*TokenIdentityResolver)(nil)

func (TokenIdentityResolver) Resolve(_ context.Context, _ uuid.UUID, token string) (*application.Identity, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 {
		return nil, errBadToken
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, errBadToken
	}
	role := domain.Role(strings.ToUpper(parts[1]))
	switch role {
	case domain.RoleAdmin, domain.RoleCaptain, domain.RolePlayer, domain.RoleSpectator:
	default:
		return nil, errBadToken
	}
	return &application.Identity{
		UserID: userID,
		Name:   parts[2],
		Role:   role,
	}, nil
}
