package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"decryptzone/database"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Environment string // "development", "production" or "test"
	LogLevel    string

	// Storage
	StorageDriver string
	DatabaseURL   string
	DatabaseName  string

	// HTTP API
	HTTPAddr       string
	AllowedOrigins []string

	// Bearer token verification
	AuthJWTSecret    string
	AuthJWTPublicKey string
	AuthJWTIssuer    string
	AuthJWTAudience  string

	// Challenges
	ChallengePoints        int64
	EnforceChallengePoints bool

	// Discord bot, disabled when DiscordToken is empty
	DiscordToken             string
	DiscordGuildID           string
	DiscordAnnounceChannelID string
	LeaderboardPostInterval  time.Duration // zero disables the scheduled post
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL combines DATABASE_URL and DATABASE_NAME
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DiscordEnabled reports whether the Discord bot should start
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Environment: os.Getenv("ENVIRONMENT"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		StorageDriver: getEnvWithDefault("STORAGE_DRIVER", StorageDriverPostgres),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabaseName:  os.Getenv("DATABASE_NAME"),

		HTTPAddr:       getEnvWithDefault("HTTP_ADDR", ":8080"),
		AllowedOrigins: splitList(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000")),

		AuthJWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		AuthJWTPublicKey: os.Getenv("AUTH_JWT_PUBLIC_KEY"),
		AuthJWTIssuer:    os.Getenv("AUTH_JWT_ISSUER"),
		AuthJWTAudience:  os.Getenv("AUTH_JWT_AUDIENCE"),

		ChallengePoints:        100,
		EnforceChallengePoints: os.Getenv("ENFORCE_CHALLENGE_POINTS") == "true",

		DiscordToken:             os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID:           os.Getenv("DISCORD_GUILD_ID"),
		DiscordAnnounceChannelID: os.Getenv("DISCORD_ANNOUNCE_CHANNEL_ID"),
	}

	if points := os.Getenv("CHALLENGE_POINTS"); points != "" {
		if parsed, err := strconv.ParseInt(points, 10, 64); err == nil && parsed > 0 {
			config.ChallengePoints = parsed
		}
	}

	if interval := os.Getenv("LEADERBOARD_POST_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid LEADERBOARD_POST_INTERVAL %q: %w", interval, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("LEADERBOARD_POST_INTERVAL must not be negative")
		}
		config.LeaderboardPostInterval = parsed
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	switch config.StorageDriver {
	case StorageDriverPostgres:
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", config.StorageDriver)
	}

	if config.Environment != "test" {
		if config.AuthJWTSecret == "" && config.AuthJWTPublicKey == "" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY is required")
		}
	}

	return config, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SetTestConfig overrides the global config instance. Tests only.
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig clears the global config instance. Tests only.
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal in-memory config for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:     "test",
		LogLevel:        "debug",
		StorageDriver:   StorageDriverMemory,
		HTTPAddr:        ":0",
		AllowedOrigins:  []string{"*"},
		AuthJWTSecret:   "test-secret",
		ChallengePoints: 100,
	}
}
