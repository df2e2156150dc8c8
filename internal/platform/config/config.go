// Package config builds runtime configuration from the environment so main
// stays lean. A .env file is honored when present; real environment variables
// always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	AdminToken string
	LogFormat  string
	LogLevel   string
}

// Postgres captures relational storage configuration. An empty DSN keeps the
// process on in-memory stores.
type Postgres struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Redis captures snapshot cache configuration. An empty URL disables caching.
type Redis struct {
	URL string
}

// Kafka captures audit pipeline configuration. No brokers means audit events
// stay on the in-process sink.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Sync tunes the registry validation engine.
type Sync struct {
	Workers            int
	ConsensusThreshold float64
	CheckLatency       time.Duration
	SourceURL          string
	CacheTTL           time.Duration
}

// Federation tunes proposal distribution to peer nodes.
type Federation struct {
	// NodeID is this node's name within the federation, carried as the
	// origin on outbound pushes.
	NodeID string
	// Nodes maps node IDs to base URLs, parsed from
	// "node-a=https://a.example,node-b=https://b.example".
	Nodes            map[string]string
	PushTimeout      time.Duration
	JWTSigningKey    string
	JWTTTL           time.Duration
	BreakerFailures  int
	BreakerSuccesses int
}

// Config is the process configuration root.
type Config struct {
	Server             Server
	Postgres           Postgres
	Redis              Redis
	Kafka              Kafka
	Sync               Sync
	Federation         Federation
	ClientFingerprints bool
}

// Load reads configuration from the environment, applying defaults and
// validating the result.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Server: Server{
			Addr:       getEnv("CONCORD_ADDR", ":8080"),
			AdminToken: os.Getenv("CONCORD_ADMIN_TOKEN"),
			LogFormat:  getEnv("CONCORD_LOG_FORMAT", "text"),
			LogLevel:   getEnv("CONCORD_LOG_LEVEL", "info"),
		},
		Postgres: Postgres{
			DSN:          os.Getenv("CONCORD_POSTGRES_DSN"),
			MaxOpenConns: getEnvInt("CONCORD_POSTGRES_MAX_OPEN", 25),
			MaxIdleConns: getEnvInt("CONCORD_POSTGRES_MAX_IDLE", 5),
		},
		Redis: Redis{
			URL: os.Getenv("CONCORD_REDIS_URL"),
		},
		Kafka: Kafka{
			Brokers:    splitList(os.Getenv("CONCORD_KAFKA_BROKERS")),
			AuditTopic: getEnv("CONCORD_AUDIT_TOPIC", "concord.audit.events"),
		},
		Sync: Sync{
			Workers:            getEnvInt("CONCORD_SYNC_WORKERS", 8),
			ConsensusThreshold: getEnvFloat("CONCORD_CONSENSUS_THRESHOLD", 2.0/3.0),
			CheckLatency:       getEnvDuration("CONCORD_CHECK_LATENCY", 0),
			SourceURL:          os.Getenv("CONCORD_REGISTRY_SOURCE_URL"),
			CacheTTL:           getEnvDuration("CONCORD_REGISTRY_CACHE_TTL", 5*time.Minute),
		},
		Federation: Federation{
			NodeID:           getEnv("CONCORD_NODE_ID", "node-local"),
			Nodes:            parseNodeMap(os.Getenv("CONCORD_FEDERATION_NODES")),
			PushTimeout:      getEnvDuration("CONCORD_FEDERATION_TIMEOUT", 5*time.Second),
			JWTSigningKey:    getEnv("CONCORD_FEDERATION_JWT_KEY", "dev-secret-key-change-in-production"),
			JWTTTL:           getEnvDuration("CONCORD_FEDERATION_JWT_TTL", 2*time.Minute),
			BreakerFailures:  getEnvInt("CONCORD_BREAKER_FAILURES", 5),
			BreakerSuccesses: getEnvInt("CONCORD_BREAKER_SUCCESSES", 2),
		},
		ClientFingerprints: getEnv("CONCORD_CLIENT_FINGERPRINTS", "true") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Sync.Workers < 1 {
		return fmt.Errorf("sync workers must be at least 1, got %d", c.Sync.Workers)
	}
	if c.Sync.ConsensusThreshold <= 0 || c.Sync.ConsensusThreshold > 1 {
		return fmt.Errorf("consensus threshold must be in (0, 1], got %g", c.Sync.ConsensusThreshold)
	}
	if c.Federation.PushTimeout <= 0 {
		return fmt.Errorf("federation push timeout must be positive, got %s", c.Federation.PushTimeout)
	}
	for nodeID, baseURL := range c.Federation.Nodes {
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			return fmt.Errorf("federation node %q has a non-HTTP base URL %q", nodeID, baseURL)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseNodeMap parses "id=url" pairs separated by commas. Malformed pairs are
// skipped rather than failing startup; Validate catches bad URLs.
func parseNodeMap(v string) map[string]string {
	if v == "" {
		return nil
	}
	nodes := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, url, ok := strings.Cut(pair, "=")
		id, url = strings.TrimSpace(id), strings.TrimSpace(url)
		if !ok || id == "" || url == "" {
			continue
		}
		nodes[id] = url
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes
}
