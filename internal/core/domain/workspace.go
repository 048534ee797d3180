package domain

// Workspace is the server-held view of one user's session state: the
// currently selected site plus what was resolved for it.
type Workspace struct {
	UserID         string     `json:"userId"`
	CurrentSiteID  string     `json:"currentSiteId,omitempty"` // empty until first selection
	Loading        bool       `json:"loading"`
	AvailableSites []Site     `json:"availableSites,omitempty"`
	AvailableMenus []MenuNode `json:"availableMenus,omitempty"`
}
