package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	// FrontendOrigin is the base URL embedded in password-reset links.
	FrontendOrigin string
	HTTP           HTTPConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	SMTP           SMTPConfig
	Twilio         TwilioConfig
	Gemini         GeminiConfig
	Vault          VaultConfig
	Buffer         BufferConfig
	Scheduler      SchedulerConfig
	Context        ContextConfig
	Logger         LoggerConfig
	Migrations     MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
	ResetTTL  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
	// DefaultTarget is the WhatsApp destination for reminder and summary
	// messages, formatted "whatsapp:+<number>".
	DefaultTarget string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type VaultConfig struct {
	// EncryptionKey is a 64-char hex string (32 bytes) for AES-256-GCM.
	EncryptionKey string
}

type BufferConfig struct {
	Path         string
	SyncInterval time.Duration
	MaxRetry     int
}

type SchedulerConfig struct {
	// ReminderInterval controls the email and WhatsApp reminder polls.
	ReminderInterval time.Duration
	// SummaryHour is the local wall-clock hour of the daily summary job.
	SummaryHour int
	// EmailLeadMinutes is the inclusive look-ahead window of the email
	// reminder check.
	EmailLeadMinutes int
	// WhatsAppLeadMinutes is the exact-offset check of the WhatsApp
	// reminder; start_time must equal now+offset to the minute.
	WhatsAppLeadMinutes int
	WorkdayStart        string
	WorkdayEnd          string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:        getString("APP_NAME", "dhana-backend"),
		Environment:    getString("APP_ENV", "development"),
		FrontendOrigin: getString("FRONTEND_ORIGIN", "http://localhost:3000"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "dhana_db"),
			User:            getString("DB_USER", "dhana_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:    os.Getenv("JWT_SECRET"),
			Issuer:    getString("JWT_ISSUER", "dhana-backend"),
			AccessTTL: getDuration("JWT_ACCESS_TTL", 24*time.Hour),
			ResetTTL:  getDuration("JWT_RESET_TTL", 15*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getString("SMTP_SERVER", "smtp.gmail.com"),
			Port:     getInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getString("SMTP_FROM", "Dhana Durga"),
		},
		Twilio: TwilioConfig{
			AccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
			WhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
			DefaultTarget:  os.Getenv("WHATSAPP_DEFAULT_TARGET"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getString("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Vault: VaultConfig{
			// Dev-only fallback; production must set ENCRYPTION_KEY.
			EncryptionKey: getString("ENCRYPTION_KEY",
				"6368616e6765207468697320646576207661756c74206b657920736f6f6e2121"),
		},
		Buffer: BufferConfig{
			Path:         getString("BOLTDB_PATH", "./data/buffer.db"),
			SyncInterval: getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:     getInt("MAX_RETRY_ATTEMPTS", 3),
		},
		Scheduler: SchedulerConfig{
			ReminderInterval:    getDuration("REMINDER_INTERVAL", time.Minute),
			SummaryHour:         getInt("SUMMARY_HOUR", 21),
			EmailLeadMinutes:    getInt("EMAIL_LEAD_MINUTES", 10),
			WhatsAppLeadMinutes: getInt("WHATSAPP_LEAD_MINUTES", 20),
			WorkdayStart:        getString("WORKDAY_START", "09:00"),
			WorkdayEnd:          getString("WORKDAY_END", "21:00"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
