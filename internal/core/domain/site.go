package domain

import "time"

// Site represents one physical plant mapped to one physical database.
type Site struct {
	SiteID       string `json:"siteID"`       // Canonical short code (e.g., "SH1")
	DisplayName  string `json:"displayName"`  // Localized plant name (e.g., "시흥1조립장")
	DatabaseName string `json:"databaseName"` // Physical database (e.g., "PLAKOR_MES_SH1")
	SiteType     string `json:"siteType"`     // e.g., "조립장"
	Description  string `json:"description"`
	Location     string `json:"location"`
}

// SiteConnection holds the per-site connection parameters. Credentials come
// only from environment configuration, never from request input.
type SiteConnection struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	Encrypt     bool
	MaxOpen     int
	MaxIdle     int
	IdleTimeout time.Duration
}

// PoolState describes the lifecycle of one site's connection pool.
type PoolState string

const (
	PoolDisconnected PoolState = "DISCONNECTED"
	PoolConnecting   PoolState = "CONNECTING"
	PoolConnected    PoolState = "CONNECTED"
	PoolClosing      PoolState = "CLOSING"
)
