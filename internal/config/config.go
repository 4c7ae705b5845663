package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/blockful/anticapture-sub000/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL             string        `mapstructure:"url"`
	StreamName      string        `mapstructure:"stream_name"`
	ConsumerName    string        `mapstructure:"consumer_name"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName  string        `mapstructure:"connection_name"`
	AckWait         time.Duration `mapstructure:"ack_wait"`
	MaxDeliver      int           `mapstructure:"max_deliver"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"` // how long the stream remembers published event ids
}

// DAOConfig describes one indexed DAO and the chain it lives on
type DAOConfig struct {
	ID              domain.DaoID `mapstructure:"id"`
	Chain           domain.Chain `mapstructure:"chain"`
	RPCURL          string       `mapstructure:"rpc_url"`
	WebSocketURL    string       `mapstructure:"websocket_url"`
	TokenAddress    string       `mapstructure:"token_address"`
	GovernorAddress string       `mapstructure:"governor_address"`
	StartBlock      uint64       `mapstructure:"start_block"`
}

// ChainHeadConfig holds the chain head cache configuration
type ChainHeadConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	StaleWindow  time.Duration `mapstructure:"stale_window"`
	BlockTimeTTL time.Duration `mapstructure:"block_time_ttl"`
}

// RPCRetryConfig holds the backoff applied to failed chain reads
type RPCRetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// CursorConfig holds how often the emitter persists its block cursor
type CursorConfig struct {
	SaveFrequency uint64        `mapstructure:"save_frequency"` // in blocks
	SaveDelay     time.Duration `mapstructure:"save_delay"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`    // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"`   // in seconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`    // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"` // empty allows any origin
}

// EmitterConfig holds configuration for event-emitter
type EmitterConfig struct {
	BaseConfig     `mapstructure:",squash"`
	Database       DatabaseConfig  `mapstructure:"database"`
	NATS           NATSConfig      `mapstructure:"nats"`
	ChainHead      ChainHeadConfig `mapstructure:"chain_head"`
	RPCRetry       RPCRetryConfig  `mapstructure:"rpc_retry"`
	Cursor         CursorConfig    `mapstructure:"cursor"`
	BackfillWindow uint64          `mapstructure:"backfill_window"` // block range per log query while catching up
	DAOs           []DAOConfig     `mapstructure:"daos"`
}

// AggregatorConfig holds configuration for aggregator
type AggregatorConfig struct {
	BaseConfig         `mapstructure:",squash"`
	Database           DatabaseConfig `mapstructure:"database"`
	NATS               NATSConfig     `mapstructure:"nats"`
	DAOs               []DAOConfig    `mapstructure:"daos"`
	ClassificationPath string         `mapstructure:"classification_path"`
	MetricsAddr        string         `mapstructure:"metrics_addr"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig   `mapstructure:",squash"`
	Server       ServerConfig    `mapstructure:"server"`
	Database     DatabaseConfig  `mapstructure:"database"`
	ChainHead    ChainHeadConfig `mapstructure:"chain_head"`
	RPCRetry     RPCRetryConfig  `mapstructure:"rpc_retry"`
	DAOs         []DAOConfig     `mapstructure:"daos"`
	StatusPolicy string          `mapstructure:"status_policy"` // separate_no_quorum or collapsed_defeat
}

// LoadEmitterConfig loads configuration for event-emitter
func LoadEmitterConfig(configFile string, envPath string) (*EmitterConfig, error) {
	v := configureViper("event-emitter", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	setRPCRetryDefaults(v)
	v.SetDefault("chain_head.ttl", "12s")
	v.SetDefault("chain_head.stale_window", "60s")
	v.SetDefault("cursor.save_frequency", 100)
	v.SetDefault("cursor.save_delay", "30s")
	v.SetDefault("backfill_window", 2000)

	var config EmitterConfig
	if err := readInto(v, &config); err != nil {
		return nil, err
	}
	if err := validateDAOs(config.DAOs); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadAggregatorConfig loads configuration for aggregator
func LoadAggregatorConfig(configFile string, envPath string) (*AggregatorConfig, error) {
	v := configureViper("aggregator", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.consumer_name", "aggregator")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", -1)
	v.SetDefault("classification_path", "config/classification.json")
	v.SetDefault("metrics_addr", ":9100")

	var config AggregatorConfig
	if err := readInto(v, &config); err != nil {
		return nil, err
	}
	if err := validateDAOs(config.DAOs); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("chain_head.ttl", "12s")
	v.SetDefault("chain_head.stale_window", "60s")
	v.SetDefault("chain_head.block_time_ttl", "1h")
	v.SetDefault("status_policy", "separate_no_quorum")
	setRPCRetryDefaults(v)
	setDatabaseDefaults(v)

	var config APIConfig
	if err := readInto(v, &config); err != nil {
		return nil, err
	}
	if err := validateDAOs(config.DAOs); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "GOVERNANCE_EVENTS")
	v.SetDefault("nats.duplicate_window", "24h")
}

func setRPCRetryDefaults(v *viper.Viper) {
	v.SetDefault("rpc_retry.initial_interval", "500ms")
	v.SetDefault("rpc_retry.max_interval", "10s")
	v.SetDefault("rpc_retry.max_elapsed_time", "2m")
}

// readInto reads the config file, tolerating a missing one, and unmarshals it
func readInto(v *viper.Viper, out interface{}) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// validateDAOs checks the DAO list and normalizes ids and addresses in place
func validateDAOs(daos []DAOConfig) error {
	seen := make(map[domain.DaoID]bool, len(daos))
	for i := range daos {
		dao := &daos[i]
		dao.ID = domain.ParseDaoID(dao.ID.String())
		if dao.ID == "" {
			return fmt.Errorf("daos[%d].id is required", i)
		}
		if seen[dao.ID] {
			return fmt.Errorf("dao %s is configured twice", dao.ID)
		}
		seen[dao.ID] = true

		if dao.Chain == "" {
			dao.Chain = domain.ChainEthereumMainnet
		}
		if !domain.IsValidChain(dao.Chain) {
			return fmt.Errorf("dao %s: unsupported chain %s", dao.ID, dao.Chain)
		}
		dao.TokenAddress = domain.NormalizeAddress(dao.TokenAddress)
		dao.GovernorAddress = domain.NormalizeAddress(dao.GovernorAddress)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/aggregator/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("ANTICAPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists.
// The DAO list is structured and only comes from the config file.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.duplicate_window",
		// Chain head cache
		"chain_head.ttl",
		"chain_head.stale_window",
		"chain_head.block_time_ttl",
		// RPC retry
		"rpc_retry.initial_interval",
		"rpc_retry.max_interval",
		"rpc_retry.max_elapsed_time",
		// Emitter
		"cursor.save_frequency",
		"cursor.save_delay",
		"backfill_window",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Aggregator
		"classification_path",
		"metrics_addr",
		// API
		"status_policy",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DAO returns the configuration of the given DAO
func (c *APIConfig) DAO(id domain.DaoID) (DAOConfig, bool) {
	for _, dao := range c.DAOs {
		if dao.ID == id {
			return dao, true
		}
	}
	return DAOConfig{}, false
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadHost is not configured, it falls back to the primary.
func (c *DatabaseConfig) ReadDSN() string {
	host := c.ReadHost
	if host == "" {
		host = c.Host
	}
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, c.User, c.Password, c.DBName, c.SSLMode)
}
