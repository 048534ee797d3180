// Package mongodb implements the auth repository over the shared document
// store holding users, sites and menus.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
)

const (
	usersCollection = "users"
	sitesCollection = "sites"
	menusCollection = "menus"
)

// menuDocument is the stored shape of one menu entry. Site availability and
// role visibility are filtered here; the tree is assembled by the service.
type menuDocument struct {
	MenuID           string               `bson:"menuId"`
	MenuName         string               `bson:"menuName"`
	MenuPath         string               `bson:"menuPath"`
	Icon             string               `bson:"icon"`
	Order            int                  `bson:"order"`
	ParentID         string               `bson:"parentId"`
	AvailableInSites []domain.SiteUseFlag `bson:"availableInSites"`
	AccessibleRoles  []string             `bson:"accessibleRoles"`
	IsActive         bool                 `bson:"isActive"`
}

// siteDocument is the stored shape of one site entry.
type siteDocument struct {
	SiteID      string `bson:"siteId"`
	SiteName    string `bson:"siteName"`
	SiteType    string `bson:"siteType"`
	Description string `bson:"description,omitempty"`
	Location    string `bson:"location,omitempty"`
	Order       int    `bson:"order"`
	IsActive    bool   `bson:"isActive"`
}

type AuthRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuthRepository creates the repository over the given database handle.
func NewAuthRepository(db *mongo.Database, logger *slog.Logger) portsrepo.AuthRepositoryFacade {
	return &AuthRepository{db: db, logger: logger}
}

// Ensure implementation matches interface
var _ portsrepo.AuthRepositoryFacade = (*AuthRepository)(nil)

// FindUserByID retrieves a user document by its login identifier.
func (r *AuthRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.db.Collection(usersCollection).
		FindOne(ctx, bson.M{"userId": userID, "isActive": true}).
		Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &user, nil
}

// UpdateLastLogin stamps the user's last successful login time.
func (r *AuthRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"lastLogin": at}})
	if err != nil {
		return fmt.Errorf("failed to update last login for %s: %w", userID, err)
	}
	return nil
}

// UpdateDefaultSite persists the user's last selected site.
func (r *AuthRepository) UpdateDefaultSite(ctx context.Context, userID, siteID string) error {
	res, err := r.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"defaultSite": siteID}})
	if err != nil {
		return fmt.Errorf("failed to update default site for %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListActiveSites retrieves the active site documents in display order.
func (r *AuthRepository) ListActiveSites(ctx context.Context) ([]domain.Site, error) {
	cursor, err := r.db.Collection(sitesCollection).Find(ctx,
		bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []siteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sites: %w", err)
	}

	sites := make([]domain.Site, 0, len(docs))
	for _, doc := range docs {
		sites = append(sites, domain.Site{
			SiteID:      doc.SiteID,
			DisplayName: doc.SiteName,
			SiteType:    doc.SiteType,
			Description: doc.Description,
			Location:    doc.Location,
		})
	}
	return sites, nil
}

// ListMenus retrieves the flat menu documents enabled for a site and visible
// to a role, in display order.
func (r *AuthRepository) ListMenus(ctx context.Context, siteID string, role domain.Role) ([]domain.MenuNode, error) {
	filter := bson.M{
		"isActive": true,
		"availableInSites": bson.M{
			"$elemMatch": bson.M{"siteId": siteID, "isActive": true},
		},
		"accessibleRoles": string(role),
	}

	cursor, err := r.db.Collection(menusCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list menus for site %s: %w", siteID, err)
	}
	defer cursor.Close(ctx)

	var docs []menuDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode menus: %w", err)
	}

	nodes := make([]domain.MenuNode, 0, len(docs))
	for _, doc := range docs {
		nodes = append(nodes, domain.MenuNode{
			MenuID:   doc.MenuID,
			MenuName: doc.MenuName,
			MenuPath: doc.MenuPath,
			Icon:     doc.Icon,
			Order:    doc.Order,
			ParentID: doc.ParentID,
		})
	}
	return nodes, nil
}
