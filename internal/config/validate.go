package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validCacheBackends = map[string]bool{
	CacheMemory: true, CacheRedis: true, CacheSQLite: true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Server.PublicURL != "" && !isHTTPURL(c.Server.PublicURL) {
		errs = append(errs, fmt.Sprintf("server.public_url: must be an absolute http(s) URL, got %q", c.Server.PublicURL))
	}

	// Jellyfin
	if c.Jellyfin.URL == "" {
		errs = append(errs, "jellyfin.url: required")
	} else if !isHTTPURL(c.Jellyfin.URL) {
		errs = append(errs, fmt.Sprintf("jellyfin.url: must be an absolute http(s) URL, got %q", c.Jellyfin.URL))
	}
	if c.Jellyfin.Username == "" {
		errs = append(errs, "jellyfin.username: required")
	}

	// TMDB
	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	if c.TMDB.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.rate_limit: must not be negative, got %g", c.TMDB.RateLimit))
	}

	// Jellyseerr
	if c.Jellyseerr.Enabled {
		if c.Jellyseerr.URL == "" {
			errs = append(errs, "jellyseerr.url: required when jellyseerr is enabled")
		}
		if c.Jellyseerr.APIKey == "" {
			errs = append(errs, "jellyseerr.api_key: required when jellyseerr is enabled")
		}
		if c.Jellyseerr.FrontendURL != "" && !isHTTPURL(c.Jellyseerr.FrontendURL) {
			errs = append(errs, fmt.Sprintf("jellyseerr.frontend_url: must be an absolute http(s) URL, got %q", c.Jellyseerr.FrontendURL))
		}
	}

	// Cache
	if !validCacheBackends[c.Cache.Backend] {
		errs = append(errs, fmt.Sprintf("cache.backend: must be one of memory, redis, sqlite; got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		errs = append(errs, "cache.redis_addr: required for the redis backend")
	}
	if c.Cache.Backend == CacheSQLite && c.Cache.SQLitePath == "" {
		errs = append(errs, "cache.sqlite_path: required for the sqlite backend")
	}

	// Add-on
	if c.Addon.CatalogLimit < 0 || c.Addon.CatalogLimit > 100 {
		errs = append(errs, fmt.Sprintf("addon.catalog_limit: must be between 1 and 100, got %d", c.Addon.CatalogLimit))
	}

	return errs
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
