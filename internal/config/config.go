// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Jellyfin   JellyfinConfig   `toml:"jellyfin"`
	TMDB       TMDBConfig       `toml:"tmdb"`
	Jellyseerr JellyseerrConfig `toml:"jellyseerr"`
	Cache      CacheConfig      `toml:"cache"`
	Addon      AddonConfig      `toml:"addon"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	// PublicURL is the address clients use to reach this server; request links point at it.
	PublicURL string `toml:"public_url"`
}

type JellyfinConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DeviceID string `toml:"device_id"`
}

type TMDBConfig struct {
	APIKey    string  `toml:"api_key"`
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"` // requests per second
	Burst     int     `toml:"burst"`
}

type JellyseerrConfig struct {
	Enabled     bool   `toml:"enabled"`
	URL         string `toml:"url"`
	APIKey      string `toml:"api_key"`
	ServerID    int    `toml:"server_id"`
	ProfileID   int    `toml:"profile_id"`
	UserID      int    `toml:"user_id"`
	Is4K        bool   `toml:"is_4k"`
	MovieRoot   string `toml:"movie_root"`
	TVRoot      string `toml:"tv_root"`
	FrontendURL string `toml:"frontend_url"`
}

type CacheConfig struct {
	Backend       string `toml:"backend"` // memory, redis or sqlite
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	SQLitePath    string `toml:"sqlite_path"`
}

type AddonConfig struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	CatalogLimit int    `toml:"catalog_limit"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

const (
	DefaultPort         = 60421
	defaultTMDBRate     = 20
	defaultTMDBBurst    = 5
	defaultCatalogLimit = 20
)

// Load reads, substitutes, applies defaults and validates the configuration file.
// Unresolved variables and validation failures are reported together as a *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cerr := &ConfigError{Path: path, Missing: missing}
	if len(missing) == 0 {
		cerr.Errors = cfg.Validate()
	}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation loads the file and applies defaults only.
// Unresolved variables are left as literal text.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = "http://localhost:" + strconv.Itoa(c.Server.Port)
	}

	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org"
	}
	if c.TMDB.RateLimit == 0 {
		c.TMDB.RateLimit = defaultTMDBRate
	}
	if c.TMDB.Burst == 0 {
		c.TMDB.Burst = defaultTMDBBurst
	}

	if c.Jellyseerr.MovieRoot == "" {
		c.Jellyseerr.MovieRoot = "/movies"
	}
	if c.Jellyseerr.TVRoot == "" {
		c.Jellyseerr.TVRoot = "/tv"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.Backend == CacheSQLite && c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "./data/jellylink.db"
	}

	if c.Addon.ID == "" {
		c.Addon.ID = "org.jellylink"
	}
	if c.Addon.Name == "" {
		c.Addon.Name = "Jellyfin"
	}
	if c.Addon.CatalogLimit == 0 {
		c.Addon.CatalogLimit = defaultCatalogLimit
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars expands variable references. Unset variables without a
// default are left in place and reported in missing; ${VAR:?msg} reports "VAR: msg".
// Empty values count as unset for the :- and :? forms.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, set := os.LookupEnv(name)

		switch op {
		case "-":
			if value == "" {
				return arg
			}
			return value
		case "?":
			if value == "" {
				missing = append(missing, name+": "+arg)
				return match
			}
			return value
		}

		if !set {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
