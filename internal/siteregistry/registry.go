// Package siteregistry resolves logical site identifiers to physical plant
// databases. It is a pure lookup over static configuration: no I/O, safe for
// concurrent use, immutable after construction.
package siteregistry

import (
	"sort"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
)

// Registry maps site codes and display names to their canonical site entry.
type Registry struct {
	byCode map[string]domain.Site
	byName map[string]string // display name -> site code
	conns  map[string]domain.SiteConnection
	order  []string
}

// New builds a registry from the configured site set.
func New(sites map[string]config.SiteConfig) *Registry {
	r := &Registry{
		byCode: make(map[string]domain.Site, len(sites)),
		byName: make(map[string]string, len(sites)),
		conns:  make(map[string]domain.SiteConnection, len(sites)),
	}
	for code, sc := range sites {
		r.byCode[code] = domain.Site{
			SiteID:       code,
			DisplayName:  sc.DisplayName,
			DatabaseName: sc.DatabaseName,
			SiteType:     "조립장",
		}
		r.byName[sc.DisplayName] = code
		r.conns[code] = domain.SiteConnection{
			Host:        sc.Host,
			Port:        sc.Port,
			User:        sc.User,
			Password:    sc.Password,
			Database:    sc.DatabaseName,
			Encrypt:     sc.Encrypt,
			MaxOpen:     sc.MaxOpen,
			MaxIdle:     sc.MaxIdle,
			IdleTimeout: sc.IdleTimeout,
		}
		r.order = append(r.order, code)
	}
	sort.Strings(r.order)
	return r
}

// Resolve accepts a site code or a display name and returns the canonical
// site entry. Either alias converges on the same tuple. Unknown identifiers
// are rejected before any connection attempt.
func (r *Registry) Resolve(identifier string) (domain.Site, error) {
	if identifier == "" {
		return domain.Site{}, apperrors.ErrNoSiteSelected
	}
	if s, ok := r.byCode[identifier]; ok {
		return s, nil
	}
	if code, ok := r.byName[identifier]; ok {
		return r.byCode[code], nil
	}
	return domain.Site{}, &apperrors.UnsupportedSiteError{Identifier: identifier}
}

// Validate reports whether the identifier resolves to a known site.
func (r *Registry) Validate(identifier string) bool {
	_, err := r.Resolve(identifier)
	return err == nil
}

// Connection returns the connection parameters for a canonical site code.
func (r *Registry) Connection(siteID string) (domain.SiteConnection, bool) {
	c, ok := r.conns[siteID]
	return c, ok
}

// Sites returns all configured sites in stable code order.
func (r *Registry) Sites() []domain.Site {
	out := make([]domain.Site, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}
