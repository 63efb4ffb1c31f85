// Package config reads the storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLen = 32

var ErrWeakSecret = errors.New("SESSION_SECRET must be at least 32 chars")

type Config struct {
	Port     string
	LogLevel string

	StorageDriver string
	StorageDSN    string

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	SearchPages        []string
	SearchFallbackFile string

	CORSOrigins     []string
	MetricsToken    string
	RateLimitPerMin int
	TrustedProxies  []netip.Prefix
}

// Load reads an optional .env file (real environment wins) and then the
// process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	c := Config{
		Port:               get("PORT", "8080"),
		LogLevel:           get("LOG_LEVEL", "info"),
		StorageDriver:      get("STORAGE_DRIVER", "memory"),
		StorageDSN:         get("STORAGE_DSN", ""),
		SessionSecret:      getenv("SESSION_SECRET"),
		SearchPages:        list(get("SEARCH_PAGES", "")),
		SearchFallbackFile: get("SEARCH_FALLBACK_FILE", ""),
		CORSOrigins:        list(get("CORS_ORIGINS", "")),
		MetricsToken:       getenv("METRICS_TOKEN"),
	}

	var err error
	if c.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "720h")); err != nil {
		return Config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if c.SecureCookies, err = strconv.ParseBool(get("SECURE_COOKIES", "false")); err != nil {
		return Config{}, fmt.Errorf("SECURE_COOKIES: %w", err)
	}
	if c.RateLimitPerMin, err = strconv.Atoi(get("RATE_LIMIT_PER_MIN", "120")); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_PER_MIN: %w", err)
	}

	if c.TrustedProxies, err = prefixes(list(get("TRUSTED_PROXIES", ""))); err != nil {
		return Config{}, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	if len(c.SessionSecret) < minSecretLen {
		return Config{}, ErrWeakSecret
	}
	return c, nil
}

func list(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// prefixes accepts CIDRs and bare addresses.
func prefixes(vs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(vs))
	for _, v := range vs {
		if !strings.Contains(v, "/") {
			a, err := netip.ParseAddr(v)
			if err != nil {
				return nil, err
			}
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Masked())
	}
	return out, nil
}
