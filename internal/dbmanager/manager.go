// Package dbmanager owns the per-site SQL Server connection pools and the
// query execution façade used by every repository. It guarantees exactly one
// reusable pool per active site and reclaims pools when a site is no longer
// in use.
package dbmanager

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"golang.org/x/sync/singleflight"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// openFunc opens a driver pool for a DSN. Injectable for tests.
type openFunc func(dsn string) (*sql.DB, error)

func defaultOpen(dsn string) (*sql.DB, error) {
	return sql.Open("sqlserver", dsn)
}

type poolEntry struct {
	siteID     string
	db         *sql.DB
	state      domain.PoolState
	lastUsedAt time.Time
}

// Manager maintains one connection pool per resolved site. It is an explicit,
// constructed service injected into repositories; the pool registry is never
// mutated outside its methods.
type Manager struct {
	mu       sync.RWMutex
	registry *siteregistry.Registry
	pools    map[string]*poolEntry
	retire   map[string]*time.Timer
	current  string

	connecting singleflight.Group

	grace   time.Duration
	prewarm bool
	open    openFunc
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithOpenFunc replaces the driver open function. Used by tests.
func WithOpenFunc(f openFunc) Option {
	return func(m *Manager) { m.open = f }
}

// WithPrewarm toggles asynchronous pool pre-warming on site switch.
func WithPrewarm(enabled bool) Option {
	return func(m *Manager) { m.prewarm = enabled }
}

// NewManager creates a pool manager over the given site registry. grace is
// the delay before a retired site's pool is closed.
func NewManager(registry *siteregistry.Registry, grace time.Duration, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		pools:    make(map[string]*poolEntry),
		retire:   make(map[string]*time.Timer),
		grace:    grace,
		prewarm:  true,
		open:     defaultOpen,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentSite returns the canonical code of the currently selected site, or
// an empty string before the first selection.
func (m *Manager) CurrentSite() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// State reports the pool lifecycle state for a site.
func (m *Manager) State(siteID string) domain.PoolState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.pools[siteID]; ok {
		return e.state
	}
	return domain.PoolDisconnected
}

// SetSite switches the manager's current site. Calling it with the already
// current site is a no-op. On an actual switch the previous site's pool is
// scheduled for retirement after the grace delay (cancellable, never blocking
// the caller) and the new site's pool is optionally pre-warmed.
func (m *Manager) SetSite(ctx context.Context, identifier string) error {
	site, err := m.registry.Resolve(identifier)
	if err != nil {
		return err
	}

	m.mu.Lock()
	previous := m.current
	if previous == site.SiteID {
		m.mu.Unlock()
		return nil
	}
	m.current = site.SiteID

	// Returning to a site whose pool is pending retirement rescues it.
	if t, ok := m.retire[site.SiteID]; ok {
		t.Stop()
		delete(m.retire, site.SiteID)
	}

	if previous != "" {
		if _, ok := m.pools[previous]; ok {
			m.scheduleRetireLocked(previous)
		}
	}
	m.mu.Unlock()

	m.logger.Info("site switched",
		slog.String("previous", previous),
		slog.String("site", site.SiteID))

	if m.prewarm {
		go func() {
			warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := m.PoolFor(warmCtx, site.SiteID); err != nil {
				m.logger.Warn("pool prewarm failed",
					slog.String("site", site.SiteID),
					slog.String("error", err.Error()))
			}
		}()
	}
	return nil
}

// scheduleRetireLocked arms the retirement timer for a site. Caller holds mu.
func (m *Manager) scheduleRetireLocked(siteID string) {
	if t, ok := m.retire[siteID]; ok {
		t.Stop()
	}
	m.retire[siteID] = time.AfterFunc(m.grace, func() {
		m.mu.Lock()
		delete(m.retire, siteID)
		// The site may have become current again while the timer ran.
		if m.current == siteID {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()
		m.CloseSite(siteID)
		m.logger.Info("retired site pool closed", slog.String("site", siteID))
	})
}

// PoolFor returns the live pool for a site, creating it on first use.
// Concurrent first-use calls for the same site converge on a single connect
// attempt. A pool that fails its health check is discarded and reconnected.
func (m *Manager) PoolFor(ctx context.Context, siteID string) (*sql.DB, error) {
	if siteID == "" {
		return nil, apperrors.ErrNoSiteSelected
	}

	m.mu.RLock()
	entry, ok := m.pools[siteID]
	m.mu.RUnlock()

	if ok && entry.state == domain.PoolConnected {
		if err := entry.db.PingContext(ctx); err == nil {
			m.touch(siteID)
			return entry.db, nil
		}
		// Health check failed: treat as disconnected and reconnect below.
		m.logger.Warn("pool health check failed, reconnecting", slog.String("site", siteID))
		m.CloseSite(siteID)
	}

	db, err, _ := m.connecting.Do(siteID, func() (interface{}, error) {
		return m.connect(ctx, siteID)
	})
	if err != nil {
		return nil, err
	}
	return db.(*sql.DB), nil
}

func (m *Manager) connect(ctx context.Context, siteID string) (*sql.DB, error) {
	// Another caller may have connected while we waited on the flight group.
	m.mu.RLock()
	if e, ok := m.pools[siteID]; ok && e.state == domain.PoolConnected {
		m.mu.RUnlock()
		return e.db, nil
	}
	m.mu.RUnlock()

	conn, ok := m.registry.Connection(siteID)
	if !ok {
		return nil, &apperrors.UnsupportedSiteError{Identifier: siteID}
	}

	m.mu.Lock()
	m.pools[siteID] = &poolEntry{siteID: siteID, state: domain.PoolConnecting}
	m.mu.Unlock()

	db, err := m.open(dsnFor(conn))
	if err == nil {
		db.SetMaxOpenConns(conn.MaxOpen)
		db.SetMaxIdleConns(conn.MaxIdle)
		db.SetConnMaxIdleTime(conn.IdleTimeout)
		err = db.PingContext(ctx)
	}
	if err != nil {
		m.mu.Lock()
		delete(m.pools, siteID)
		m.mu.Unlock()
		if db != nil {
			_ = db.Close()
		}
		return nil, &apperrors.ConnectionFailedError{SiteID: siteID, Err: err}
	}

	m.mu.Lock()
	m.pools[siteID] = &poolEntry{
		siteID:     siteID,
		db:         db,
		state:      domain.PoolConnected,
		lastUsedAt: time.Now(),
	}
	m.mu.Unlock()

	m.logger.Info("site pool connected", slog.String("site", siteID))
	return db, nil
}

func (m *Manager) touch(siteID string) {
	m.mu.Lock()
	if e, ok := m.pools[siteID]; ok {
		e.lastUsedAt = time.Now()
	}
	m.mu.Unlock()
}

// CloseSite tears down one site's pool. Closing an absent or already-closed
// pool is a no-op, not an error.
func (m *Manager) CloseSite(siteID string) {
	m.mu.Lock()
	if t, ok := m.retire[siteID]; ok {
		t.Stop()
		delete(m.retire, siteID)
	}
	entry, ok := m.pools[siteID]
	if !ok {
		m.mu.Unlock()
		return
	}
	entry.state = domain.PoolClosing
	delete(m.pools, siteID)
	m.mu.Unlock()

	if entry.db != nil {
		if err := entry.db.Close(); err != nil {
			m.logger.Error("pool close failed",
				slog.String("site", siteID),
				slog.String("error", err.Error()))
		}
	}
}

// CloseAll tears down every pool. Used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	siteIDs := make([]string, 0, len(m.pools))
	for id := range m.pools {
		siteIDs = append(siteIDs, id)
	}
	m.mu.Unlock()

	for _, id := range siteIDs {
		m.CloseSite(id)
	}
}

func dsnFor(c domain.SiteConnection) string {
	var b strings.Builder
	b.WriteString("sqlserver://")
	b.WriteString(c.User)
	b.WriteString(":")
	b.WriteString(c.Password)
	b.WriteString("@")
	b.WriteString(c.Host)
	if c.Port > 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(c.Port))
	}
	b.WriteString("?database=")
	b.WriteString(c.Database)
	if c.Encrypt {
		b.WriteString("&encrypt=true")
	} else {
		b.WriteString("&encrypt=disable")
	}
	b.WriteString("&TrustServerCertificate=true")
	return b.String()
}
