package repositories

import (
	"context"
	"time"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// UserReader defines read operations over the user document store.
type UserReader interface {
	// FindUserByID retrieves a user document by its login identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriter defines write operations over the user document store.
type UserWriter interface {
	// UpdateLastLogin stamps the user's last successful login time.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// UpdateDefaultSite persists the user's last selected site.
	UpdateDefaultSite(ctx context.Context, userID, siteID string) error
}

// SiteDocReader defines read operations over the site document store.
type SiteDocReader interface {
	// ListActiveSites retrieves the active site documents in display order.
	ListActiveSites(ctx context.Context) ([]domain.Site, error)
}

// MenuReader defines read operations over the menu document store.
type MenuReader interface {
	// ListMenus retrieves the flat menu documents enabled for a site and
	// visible to a role, in display order.
	ListMenus(ctx context.Context, siteID string, role domain.Role) ([]domain.MenuNode, error)
}

// AuthRepositoryFacade combines the document store interfaces backing
// authentication and authorization.
type AuthRepositoryFacade interface {
	UserReader
	UserWriter
	SiteDocReader
	MenuReader
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	SpecRepo     SpecRepositoryFacade
	SequenceRepo SequenceRepositoryFacade
	AuthRepo     AuthRepositoryFacade
}
