package services

import (
	"context"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// AuthSvcFacade authenticates users and resolves their site and menu
// permissions from the document store.
type AuthSvcFacade interface {
	// Login verifies the credentials and returns a signed token plus the
	// user profile.
	Login(ctx context.Context, userID, password string) (string, *domain.User, error)

	// VerifyToken parses and validates a token, returning the user ID and
	// role claims.
	VerifyToken(ctx context.Context, token string) (string, domain.Role, error)

	// GetUserSites returns the sites the user may work in. When the
	// document store is unreachable a static default roster is returned.
	GetUserSites(ctx context.Context, userID string) ([]domain.Site, error)

	// GetUserMenus returns the user's menu tree for a site. Lacking access
	// to the site fails closed, never an empty tree.
	GetUserMenus(ctx context.Context, userID, site string) ([]domain.MenuNode, error)
}

// WorkspaceSvcFacade holds per-user session state: the selected site and
// what was resolved for it.
type WorkspaceSvcFacade interface {
	// ChangeSite switches the user's current site. A change already in
	// flight for the same user is rejected, not queued.
	ChangeSite(ctx context.Context, userID, site string) (*domain.Workspace, error)

	// Current returns the user's workspace snapshot.
	Current(ctx context.Context, userID string) (*domain.Workspace, error)
}
