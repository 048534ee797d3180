package domain

import "time"

// Role is a user's role within a site.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// SiteAccess grants a user access to one site.
type SiteAccess struct {
	SiteID   string `json:"siteId" bson:"siteId"`
	SiteName string `json:"siteName,omitempty" bson:"siteName,omitempty"`
}

// User represents a dashboard user stored in the document store.
type User struct {
	UserID          string       `json:"userId" bson:"userId"`
	Username        string       `json:"username" bson:"username"`
	Email           string       `json:"email" bson:"email"`
	PasswordHash    string       `json:"-" bson:"passwordHash"`
	Role            Role         `json:"role" bson:"role"`
	AccessibleSites []SiteAccess `json:"accessibleSites" bson:"accessibleSites"`
	DefaultSite     string       `json:"defaultSite" bson:"defaultSite"`
	IsActive        bool         `json:"isActive" bson:"isActive"`
	LastLogin       *time.Time   `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
}

// HasAccessToSite reports whether the user may work in the given site.
func (u *User) HasAccessToSite(siteID string) bool {
	for _, a := range u.AccessibleSites {
		if a.SiteID == siteID {
			return true
		}
	}
	return false
}
