package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SiteConfig holds the connection parameters for one plant database.
type SiteConfig struct {
	SiteID       string
	DisplayName  string
	DatabaseName string
	Host         string
	Port         int
	User         string
	Password     string
	Encrypt      bool
	MaxOpen      int
	MaxIdle      int
	IdleTimeout  time.Duration
}

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Per-site SQL Server targets, keyed by site code.
	Sites map[string]SiteConfig

	// Document store (users / sites / menus).
	MongoURI string
	MongoDB  string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Grace delay before a retired site pool is closed.
	PoolRetireGrace time.Duration
	PoolPrewarm     bool

	RateLimit string // ulule/limiter format, e.g. "300-M"
}

// siteDefaults mirrors the plant roster the dashboard ships with. Hosts and
// credentials are placeholders that the per-site env vars override.
var siteDefaults = []struct {
	code, name, db string
}{
	{"SH1", "시흥1조립장", "PLAKOR_MES_SH1"},
	{"SH2", "시흥2조립장", "PLAKOR_MES_SH2"},
	{"HS", "화성조립장", "PLAKOR_DJ_MES"},
	{"SS", "서산조립장", "PLAKOR_MES_SS"},
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MONGODB_URI", "")
	viper.SetDefault("MONGODB_DB", "PLAKOR_ASSY_MES")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "8h")
	viper.SetDefault("JWT_ISSUER", "assy-dashboard")
	viper.SetDefault("POOL_RETIRE_GRACE", "1s")
	viper.SetDefault("POOL_PREWARM", true)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("DB_ENCRYPT", false)
	for _, s := range siteDefaults {
		viper.SetDefault("DB_SERVER_"+s.code, "")
		viper.SetDefault("DB_PORT_"+s.code, 1433)
		viper.SetDefault("DB_USER_"+s.code, "mesuser")
		viper.SetDefault("DB_PASSWORD_"+s.code, "")
		viper.SetDefault("DB_NAME_"+s.code, s.db)
		viper.SetDefault("DB_MAX_OPEN_"+s.code, 10)
		viper.SetDefault("DB_MAX_IDLE_"+s.code, 0)
	}

	viper.AutomaticEnv()

	cfg := &Config{
		Port:         viper.GetString("PORT"),
		IsProduction: viper.GetBool("IS_PRODUCTION"),
		MongoURI:     viper.GetString("MONGODB_URI"),
		MongoDB:      viper.GetString("MONGODB_DB"),
		JWTSecret:    viper.GetString("JWT_SECRET"),
		JWTIssuer:    viper.GetString("JWT_ISSUER"),
		PoolPrewarm:  viper.GetBool("POOL_PREWARM"),
		RateLimit:    viper.GetString("RATE_LIMIT"),
		Sites:        make(map[string]SiteConfig, len(siteDefaults)),
	}

	if cfg.MongoURI == "" {
		log.Println("Warning: MONGODB_URI environment variable not set. Menu/user store will run in degraded mode.")
	}
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiry = 8 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiry)
	}
	cfg.JWTExpiryDuration = jwtExpiry

	graceStr := viper.GetString("POOL_RETIRE_GRACE")
	grace, err := time.ParseDuration(graceStr)
	if err != nil {
		grace = time.Second
		log.Printf("Warning: Invalid value for POOL_RETIRE_GRACE ('%s'). Defaulting to %s.\n", graceStr, grace)
	}
	cfg.PoolRetireGrace = grace

	encrypt := viper.GetBool("DB_ENCRYPT")
	for _, s := range siteDefaults {
		sc := SiteConfig{
			SiteID:       s.code,
			DisplayName:  s.name,
			DatabaseName: viper.GetString("DB_NAME_" + s.code),
			Host:         viper.GetString("DB_SERVER_" + s.code),
			Port:         viper.GetInt("DB_PORT_" + s.code),
			User:         viper.GetString("DB_USER_" + s.code),
			Password:     viper.GetString("DB_PASSWORD_" + s.code),
			Encrypt:      encrypt,
			MaxOpen:      viper.GetInt("DB_MAX_OPEN_" + s.code),
			MaxIdle:      viper.GetInt("DB_MAX_IDLE_" + s.code),
			IdleTimeout:  30 * time.Second,
		}
		if sc.Host == "" {
			log.Printf("Warning: DB_SERVER_%s not set. Site %s will fail to connect until configured.\n", s.code, s.code)
		}
		cfg.Sites[s.code] = sc
	}

	return cfg, nil
}

// DSN builds the sqlserver connection string for one site.
func (s SiteConfig) DSN() string {
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s&encrypt=%t&TrustServerCertificate=true",
		s.User, s.Password, s.Host, s.Port, s.DatabaseName, s.Encrypt)
}
