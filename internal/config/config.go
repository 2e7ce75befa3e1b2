package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string   `mapstructure:"PORT"`
	Env                 string   `mapstructure:"ENV"`
	AuthMode            string   `mapstructure:"AUTH_MODE"`
	JWTSecret           string   `mapstructure:"JWT_SECRET"`
	DatabaseURL         string   `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32    `mapstructure:"DB_MIN_CONNS"`
	UploadDir           string   `mapstructure:"UPLOAD_DIR"`
	MaxUploadBytes      int64    `mapstructure:"MAX_UPLOAD_BYTES"`
	WorkerPoolSize      int      `mapstructure:"WORKER_POOL_SIZE"`
	BackupRetentionDays int      `mapstructure:"BACKUP_RETENTION_DAYS"`
	CORSOrigins         []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int      `mapstructure:"RATE_LIMIT_BURST"`
	LabName             string   `mapstructure:"LAB_NAME"`
	LabAddress          string   `mapstructure:"LAB_ADDRESS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("WORKER_POOL_SIZE", 4)
	v.SetDefault("BACKUP_RETENTION_DAYS", 30)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("LAB_NAME", "City Diagnostic Laboratory")
	v.SetDefault("LAB_ADDRESS", "")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("UPLOAD_DIR")
	v.BindEnv("MAX_UPLOAD_BYTES")
	v.BindEnv("WORKER_POOL_SIZE")
	v.BindEnv("BACKUP_RETENTION_DAYS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("LAB_NAME")
	v.BindEnv("LAB_ADDRESS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise, the mode is inferred:
//   - ENV=development → "development" (no auth, all requests get admin)
//   - Otherwise       → "jwt" (HS256 bearer tokens signed with JWT_SECRET)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

// Validate checks that the configuration is safe to run. In non-development
// modes JWT_SECRET must be set so that real token authentication is enforced.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "development" && mode != "jwt" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}
	if mode == "jwt" && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when AUTH_MODE is \"jwt\" (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.WorkerPoolSize <= 0 {
		return fmt.Errorf("WORKER_POOL_SIZE must be positive, got %d", c.WorkerPoolSize)
	}
	if c.BackupRetentionDays <= 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must be positive, got %d", c.BackupRetentionDays)
	}

	return nil
}

// BackupDirName is the subdirectory of the upload dir holding report backups.
const BackupDirName = "backups"

// EnsureDirs creates the upload directory and its backups subdirectory.
// Called once at startup; failure is fatal because every report operation
// depends on these paths existing.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.BackupDir(), 0o755); err != nil {
		return fmt.Errorf("create upload directories: %w", err)
	}
	return nil
}

// UploadPath joins name onto the upload directory.
func (c *Config) UploadPath(name string) string {
	return filepath.Join(c.UploadDir, name)
}

// BackupDir returns the backup directory path.
func (c *Config) BackupDir() string {
	return filepath.Join(c.UploadDir, BackupDirName)
}

// BackupPath joins name onto the backup directory.
func (c *Config) BackupPath(name string) string {
	return filepath.Join(c.BackupDir(), name)
}
