package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects a gateway or feed implementation.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"

	FeedRealtime = "realtime"
	FeedPostgres = "postgres"
	FeedRedis    = "redis"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Gateway     GatewayConfig
	Feed        FeedConfig
	Redis       RedisConfig
	Snapshot    SnapshotConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

// HTTPConfig configures the local UI server. It binds to loopback by
// default: the board is a per-user client, not a shared service.
type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// GatewayConfig points at the hosted platform.
type GatewayConfig struct {
	URL            string
	AnonKey        string
	AccessToken    string
	Bucket         string
	Backend        string
	DatabaseURL    string
	RequestTimeout time.Duration
}

// FeedConfig selects and tunes the change-feed backend.
type FeedConfig struct {
	Backend           string
	HeartbeatInterval time.Duration
	BufferSize        int
	ResyncInterval    time.Duration
	MonitorInterval   time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type SnapshotConfig struct {
	Enabled bool
	Path    string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally
// .env). The gateway endpoint and access key are a fatal startup
// condition: without them the client cannot reach any of its data.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskboard-client"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("UI_HOST", "127.0.0.1"),
			Port:         getString("UI_PORT", "8787"),
			ReadTimeout:  getDuration("UI_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("UI_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("UI_IDLE_TIMEOUT", 120*time.Second),
		},
		Gateway: GatewayConfig{
			URL:            os.Getenv("GATEWAY_URL"),
			AnonKey:        os.Getenv("GATEWAY_ANON_KEY"),
			AccessToken:    os.Getenv("GATEWAY_ACCESS_TOKEN"),
			Bucket:         getString("GATEWAY_BUCKET", "attachments"),
			Backend:        getString("GATEWAY_BACKEND", BackendREST),
			DatabaseURL:    os.Getenv("GATEWAY_DATABASE_URL"),
			RequestTimeout: getDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Feed: FeedConfig{
			Backend:           getString("FEED_BACKEND", FeedRealtime),
			HeartbeatInterval: getDuration("FEED_HEARTBEAT_INTERVAL", 25*time.Second),
			BufferSize:        getInt("FEED_BUFFER_SIZE", 16),
			ResyncInterval:    getDuration("FEED_RESYNC_INTERVAL", 5*time.Minute),
			MonitorInterval:   getDuration("MONITOR_INTERVAL", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Snapshot: SnapshotConfig{
			Enabled: getBool("SNAPSHOT_ENABLED", true),
			Path:    getString("SNAPSHOT_PATH", "./data/snapshot.db"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if cfg.Gateway.URL == "" {
		return nil, fmt.Errorf("GATEWAY_URL is required")
	}
	if cfg.Gateway.AnonKey == "" {
		return nil, fmt.Errorf("GATEWAY_ANON_KEY is required")
	}
	if cfg.Gateway.Backend == BackendPostgres && cfg.Gateway.DatabaseURL == "" {
		return nil, fmt.Errorf("GATEWAY_DATABASE_URL is required for the postgres backend")
	}

	return cfg, nil
}

// Address returns the local listen address for the UI server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
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
