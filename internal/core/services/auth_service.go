package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/platform/config"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// AuthClaims is the token payload issued at login.
type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	repo     portsrepo.AuthRepositoryFacade // nil when the document store is unavailable
	registry *siteregistry.Registry
	secret   []byte
	expiry   time.Duration
	issuer   string
	logger   *slog.Logger
}

// NewAuthService creates the authentication and authorization service. repo
// may be nil when the document store could not be reached at startup; the
// service then serves the static default roster and menus.
func NewAuthService(repo portsrepo.AuthRepositoryFacade, registry *siteregistry.Registry, cfg *config.Config, logger *slog.Logger) portssvc.AuthSvcFacade {
	return &authService{
		repo:     repo,
		registry: registry,
		secret:   []byte(cfg.JWTSecret),
		expiry:   cfg.JWTExpiryDuration,
		issuer:   cfg.JWTIssuer,
		logger:   logger,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the credentials against the user document and issues a
// token. Unknown users and wrong passwords are indistinguishable to the
// caller.
func (s *authService) Login(ctx context.Context, userID, password string) (string, *domain.User, error) {
	if s.repo == nil {
		return "", nil, fmt.Errorf("%w: user store unavailable", apperrors.ErrConnectionFailed)
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", slog.String("user", userID))
		return "", nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}

	now := time.Now()
	claims := AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		// A failed stamp must not block the login itself.
		s.logger.Warn("failed to stamp last login",
			slog.String("user", userID),
			slog.String("error", err.Error()))
	}

	s.logger.Info("user logged in", slog.String("user", userID), slog.String("role", string(user.Role)))
	return token, user, nil
}

// VerifyToken parses and validates a bearer token.
func (s *authService) VerifyToken(_ context.Context, token string) (string, domain.Role, error) {
	parsed, err := jwt.ParseWithClaims(token, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperrors.ErrForbidden, err)
	}

	claims, ok := parsed.Claims.(*AuthClaims)
	if !ok || claims.Subject == "" {
		return "", "", fmt.Errorf("%w: malformed token claims", apperrors.ErrForbidden)
	}
	return claims.Subject, domain.Role(claims.Role), nil
}

// GetUserSites joins the user's accessible-site list with the active site
// documents. When the store is unreachable the configured plant roster is
// served instead so the dashboard stays usable.
func (s *authService) GetUserSites(ctx context.Context, userID string) ([]domain.Site, error) {
	if s.repo == nil {
		s.logger.Warn("document store unavailable, serving default site roster")
		return s.registry.Sites(), nil
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("document store unreachable, serving default site roster",
			slog.String("error", err.Error()))
		return s.registry.Sites(), nil
	}

	active, err := s.repo.ListActiveSites(ctx)
	if err != nil {
		s.logger.Warn("document store unreachable, serving default site roster",
			slog.String("error", err.Error()))
		return s.registry.Sites(), nil
	}

	sites := make([]domain.Site, 0, len(active))
	for _, site := range active {
		if user.HasAccessToSite(site.SiteID) {
			sites = append(sites, site)
		}
	}
	return sites, nil
}

// GetUserMenus resolves the user's menu tree for a site. A user without
// access to the site is rejected outright, never handed an empty tree.
func (s *authService) GetUserMenus(ctx context.Context, userID, site string) ([]domain.MenuNode, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}

	if s.repo == nil {
		s.logger.Warn("document store unavailable, serving default menu tree")
		return defaultMenuTree(), nil
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", apperrors.ErrForbidden)
		}
		s.logger.Warn("document store unreachable, serving default menu tree",
			slog.String("error", err.Error()))
		return defaultMenuTree(), nil
	}

	if !user.HasAccessToSite(resolved.SiteID) {
		return nil, fmt.Errorf("%w: no access to site %s", apperrors.ErrForbidden, resolved.SiteID)
	}

	flat, err := s.repo.ListMenus(ctx, resolved.SiteID, user.Role)
	if err != nil {
		s.logger.Warn("document store unreachable, serving default menu tree",
			slog.String("error", err.Error()))
		return defaultMenuTree(), nil
	}
	return buildMenuTree(flat), nil
}

// buildMenuTree nests flat menu documents into the two-level tree the
// navigation renders. Orphans whose parent was filtered out are promoted to
// the top level rather than dropped.
func buildMenuTree(flat []domain.MenuNode) []domain.MenuNode {
	byID := make(map[string]int, len(flat))
	for i, node := range flat {
		byID[node.MenuID] = i
	}

	tops := make([]domain.MenuNode, 0, len(flat))
	children := make(map[string][]domain.MenuNode)
	for _, node := range flat {
		if node.ParentID == "" {
			tops = append(tops, node)
			continue
		}
		if _, ok := byID[node.ParentID]; ok {
			children[node.ParentID] = append(children[node.ParentID], node)
		} else {
			tops = append(tops, node)
		}
	}

	for i := range tops {
		tops[i].Children = children[tops[i].MenuID]
	}
	return tops
}

// defaultMenuTree is the degraded-mode navigation: the two dashboard pages
// every role can reach.
func defaultMenuTree() []domain.MenuNode {
	return []domain.MenuNode{
		{
			MenuID:   "menu-production",
			MenuName: "생산관리",
			MenuPath: "/production",
			Icon:     "ic-production",
			Order:    1,
			Children: []domain.MenuNode{
				{MenuID: "menu-spec-info", MenuName: "사양정보", MenuPath: "/production/spec-info", Order: 1},
				{MenuID: "menu-sequence-status", MenuName: "서열수신현황", MenuPath: "/production/sequence-status", Order: 2},
			},
		},
	}
}
