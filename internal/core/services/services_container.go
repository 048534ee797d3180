package services

import (
	"log/slog"

	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. repos.AuthRepo may be nil when the document
// store is unavailable; the auth and workspace services then run degraded.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, registry *siteregistry.Registry, manager *dbmanager.Manager, logger *slog.Logger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Auth = NewAuthService(repos.AuthRepo, registry, cfg, logger)
	container.Spec = NewSpecService(repos.SpecRepo, registry, logger)
	container.Sequence = NewSequenceService(repos.SequenceRepo, registry, logger)
	container.Workspace = NewWorkspaceService(manager, container.Auth, repos.AuthRepo, registry, logger)

	return container
}
