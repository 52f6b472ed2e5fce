package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	CORS      CORSConfig
	Log       LogConfig
	Security  SecurityConfig
	Bootstrap BootstrapConfig
	Features  FeatureConfig
	Audit     AuditConfig
	Storage   StorageConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// RedisConfig configures the optional session index. When disabled sessions are stateless.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig governs the signed session cookie.
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SecurityConfig holds credential hashing parameters.
type SecurityConfig struct {
	BcryptCost int
}

// BootstrapConfig seeds the first admin account on an empty database.
type BootstrapConfig struct {
	Username string
	Password string
	FullName string
}

// Enabled reports whether a bootstrap admin has been configured.
func (b BootstrapConfig) Enabled() bool {
	return b.Username != "" && b.Password != ""
}

// AuditConfig controls how audit entries are written.
type AuditConfig struct {
	Async      bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// StorageConfig locates uploaded student photos.
type StorageConfig struct {
	PhotoDir      string
	MaxPhotoBytes int64
	LinkTTL       time.Duration
}

// FeatureConfig toggles optional surfaces.
type FeatureConfig struct {
	PublicEnrollment bool
	Metrics          bool
	Reports          bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = normalisePrefix(v.GetString("API_PREFIX"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:       v.GetString("SESSION_SECRET"),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Security = SecurityConfig{BcryptCost: v.GetInt("BCRYPT_COST")}

	cfg.Bootstrap = BootstrapConfig{
		Username: strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN_USERNAME")),
		Password: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
		FullName: strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN_FULL_NAME")),
	}

	cfg.Features = FeatureConfig{
		PublicEnrollment: v.GetBool("PUBLIC_ENROLLMENT"),
		Metrics:          v.GetBool("ENABLE_METRICS"),
		Reports:          v.GetBool("ENABLE_REPORTS"),
	}

	cfg.Audit = AuditConfig{
		Async:      v.GetBool("AUDIT_ASYNC"),
		Workers:    v.GetInt("AUDIT_WORKERS"),
		MaxRetries: v.GetInt("AUDIT_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("AUDIT_RETRY_DELAY"), time.Second),
	}

	cfg.Storage = StorageConfig{
		PhotoDir:      v.GetString("PHOTO_DIR"),
		MaxPhotoBytes: v.GetInt64("PHOTO_MAX_BYTES"),
		LinkTTL:       parseDuration(v.GetString("PHOTO_LINK_TTL"), 15*time.Minute),
	}

	if cfg.Env == EnvProduction && cfg.Session.Secret == defaultSessionSecret {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}

	return cfg, nil
}

const defaultSessionSecret = "dev_session_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "spi_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "spi_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	v.SetDefault("BOOTSTRAP_ADMIN_FULL_NAME", "System Administrator")

	v.SetDefault("PUBLIC_ENROLLMENT", true)
	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_REPORTS", true)

	v.SetDefault("AUDIT_ASYNC", false)
	v.SetDefault("AUDIT_WORKERS", 2)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
	v.SetDefault("AUDIT_RETRY_DELAY", "1s")

	v.SetDefault("PHOTO_DIR", "./uploads/photos")
	v.SetDefault("PHOTO_MAX_BYTES", 2<<20)
	v.SetDefault("PHOTO_LINK_TTL", "15m")
}

func normalisePrefix(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
