package dto

import (
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// LoginRequest defines the credentials for a login attempt.
type LoginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse defines the user profile returned after authentication.
// The password hash never leaves the repository layer.
type UserResponse struct {
	UserID          string   `json:"userId"`
	Username        string   `json:"username"`
	Role            string   `json:"role"`
	AccessibleSites []string `json:"accessibleSites"`
	DefaultSite     string   `json:"defaultSite,omitempty"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	sites := make([]string, len(user.AccessibleSites))
	for i, access := range user.AccessibleSites {
		sites[i] = access.SiteID
	}
	return UserResponse{
		UserID:          user.UserID,
		Username:        user.Username,
		Role:            string(user.Role),
		AccessibleSites: sites,
		DefaultSite:     user.DefaultSite,
	}
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ChangeSiteRequest selects the workspace's current site. Site accepts a
// short code or a display name.
type ChangeSiteRequest struct {
	Site string `json:"site" binding:"required"`
}
