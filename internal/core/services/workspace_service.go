package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// userWorkspace is one user's session state. The mutex serializes site
// changes for that user only.
type userWorkspace struct {
	mu sync.Mutex
	ws domain.Workspace
}

type workspaceService struct {
	manager  *dbmanager.Manager
	auth     portssvc.AuthSvcFacade
	repo     portsrepo.AuthRepositoryFacade // nil in degraded mode
	registry *siteregistry.Registry
	logger   *slog.Logger

	mu     sync.Mutex
	byUser map[string]*userWorkspace
}

// NewWorkspaceService creates the per-user workspace service.
func NewWorkspaceService(manager *dbmanager.Manager, auth portssvc.AuthSvcFacade, repo portsrepo.AuthRepositoryFacade, registry *siteregistry.Registry, logger *slog.Logger) portssvc.WorkspaceSvcFacade {
	return &workspaceService{
		manager:  manager,
		auth:     auth,
		repo:     repo,
		registry: registry,
		logger:   logger,
		byUser:   make(map[string]*userWorkspace),
	}
}

var _ portssvc.WorkspaceSvcFacade = (*workspaceService)(nil)

func (s *workspaceService) entry(userID string) *userWorkspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byUser[userID]
	if !ok {
		e = &userWorkspace{ws: domain.Workspace{UserID: userID}}
		s.byUser[userID] = e
	}
	return e
}

// ChangeSite switches the user's current site. Selecting the current site
// again is a no-op; a second change arriving while one is in flight is
// rejected, not queued, so the last click cannot silently win.
func (s *workspaceService) ChangeSite(ctx context.Context, userID, site string) (*domain.Workspace, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}

	entry := s.entry(userID)
	if !entry.mu.TryLock() {
		return nil, fmt.Errorf("%w: site change already running for user %s", apperrors.ErrChangeInFlight, userID)
	}
	defer entry.mu.Unlock()

	if entry.ws.CurrentSiteID == resolved.SiteID {
		snapshot := entry.ws
		return &snapshot, nil
	}

	// Menu resolution doubles as the membership check: it fails closed
	// when the user lacks access to the target site.
	menus, err := s.auth.GetUserMenus(ctx, userID, resolved.SiteID)
	if err != nil {
		return nil, err
	}

	entry.ws.Loading = true
	if err := s.manager.SetSite(ctx, resolved.SiteID); err != nil {
		entry.ws.Loading = false
		return nil, err
	}

	sites, err := s.auth.GetUserSites(ctx, userID)
	if err != nil {
		entry.ws.Loading = false
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.UpdateDefaultSite(ctx, userID, resolved.SiteID); err != nil {
			// Persistence is best effort; the switch itself already took.
			s.logger.Warn("failed to persist default site",
				slog.String("user", userID),
				slog.String("site", resolved.SiteID),
				slog.String("error", err.Error()))
		}
	}

	entry.ws.CurrentSiteID = resolved.SiteID
	entry.ws.AvailableSites = sites
	entry.ws.AvailableMenus = menus
	entry.ws.Loading = false

	s.logger.Info("workspace site changed",
		slog.String("user", userID),
		slog.String("site", resolved.SiteID))

	snapshot := entry.ws
	return &snapshot, nil
}

// Current returns the user's workspace snapshot.
func (s *workspaceService) Current(_ context.Context, userID string) (*domain.Workspace, error) {
	entry := s.entry(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	snapshot := entry.ws
	return &snapshot, nil
}
