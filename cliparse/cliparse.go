package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                 int
	DatabaseURL          string
	DatabaseType         string
	AdminKey             string
	SessionCookieName    string
	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	LogLevel             string
	PageSize             int
}

// fileConfig is the YAML form of Config. Durations are pointers so an
// explicit 0s is kept apart from a missing key.
type fileConfig struct {
	Port                 int            `yaml:"port"`
	DatabaseURL          string         `yaml:"database_url"`
	DatabaseType         string         `yaml:"database_type"`
	AdminKey             string         `yaml:"admin_key"`
	SessionCookieName    string         `yaml:"session_cookie_name"`
	SessionTTL           *time.Duration `yaml:"session_ttl"`
	SessionPurgeInterval *time.Duration `yaml:"session_purge_interval"`
	LogLevel             string         `yaml:"log_level"`
	PageSize             int            `yaml:"page_size"`
}

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabasePgx      = "pgx"
)

const (
	defaultPort                 = 3318
	defaultSessionCookieName    = "pollsid"
	defaultSessionTTL           = 14 * 24 * time.Hour
	defaultSessionPurgeInterval = time.Hour
	defaultLogLevel             = "info"
)

// DefaultPageSize is the index page size when none is configured.
const DefaultPageSize = 10

// ParseFlags builds the configuration from CLI flags, environment variables,
// an optional YAML file and defaults, in that order of precedence.
func ParseFlags(args []string) (Config, error) {
	var cli Config
	var configFile, envFile string
	purgeInterval := "" // empty means "not set on the command line"
	sessionTTL := ""

	fs := flag.NewFlagSet("polls", flag.ContinueOnError)

	fs.StringVar(&configFile, "c", "", "YAML config file")
	fs.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading env")

	// Network config (can be CLI args or env)
	fs.IntVar(&cli.Port, "p", 0, "Server port")
	fs.StringVar(&cli.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cli.DatabaseType, "t", "", "Database type (sqlite, postgres or pgx)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cli.AdminKey, "admin-key", "", "Admin API key (prefer env)")

	fs.StringVar(&cli.SessionCookieName, "session-cookie", "", "Session cookie name")
	fs.StringVar(&sessionTTL, "session-ttl", "", "Session lifetime, e.g. 336h")
	fs.StringVar(&purgeInterval, "session-purge", "", "Expired session purge interval (0 disables)")
	fs.StringVar(&cli.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&cli.PageSize, "page-size", 0, "Questions per index page")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// A missing dotenv file is fine, a broken one is not
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	var file fileConfig
	if configFile != "" {
		var err error
		file, err = loadFile(configFile)
		if err != nil {
			return Config{}, err
		}
	}

	cfg := cli

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if file.Port != 0 {
			cfg.Port = file.Port
		} else {
			cfg.Port = defaultPort
		}
	}

	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"), file.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), file.DatabaseType, DatabaseSQLite)
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabasePgx:
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	cfg.AdminKey = firstNonEmpty(cfg.AdminKey, os.Getenv("ADMIN_KEY"), file.AdminKey)
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	cfg.SessionCookieName = firstNonEmpty(cfg.SessionCookieName, os.Getenv("SESSION_COOKIE_NAME"),
		file.SessionCookieName, defaultSessionCookieName)

	var err error
	cfg.SessionTTL, err = durationSetting("SESSION_TTL", sessionTTL, file.SessionTTL, defaultSessionTTL)
	if err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}

	cfg.SessionPurgeInterval, err = durationSetting("SESSION_PURGE_INTERVAL", purgeInterval,
		file.SessionPurgeInterval, defaultSessionPurgeInterval)
	if err != nil {
		return Config{}, err
	}

	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), file.LogLevel, defaultLogLevel)

	if cfg.PageSize == 0 {
		if s := os.Getenv("PAGE_SIZE"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid PAGE_SIZE env variable")
			}
			cfg.PageSize = n
		} else if file.PageSize != 0 {
			cfg.PageSize = file.PageSize
		} else {
			cfg.PageSize = DefaultPageSize
		}
	}
	if cfg.PageSize < 1 {
		return Config{}, errors.New("page size must be at least 1")
	}

	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg fileConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("failed to decode config file: %w", err)
	}
	return cfg, nil
}

// durationSetting resolves a duration from flag, env, file and default.
// Flag and env values use time.ParseDuration syntax.
func durationSetting(env, flagValue string, fileValue *time.Duration, def time.Duration) (time.Duration, error) {
	raw := firstNonEmpty(flagValue, os.Getenv(env))
	if raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", env, err)
		}
		return d, nil
	}
	if fileValue != nil {
		return *fileValue, nil
	}
	return def, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
