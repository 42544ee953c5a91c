package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const envProduction = "production"

type Config struct {
	Port     string `env:"PORT,      default=3001"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// BasePath is the proxy prefix the API is also mounted under.
	BasePath string `env:"BASE_PATH, default=/wedding-registry"`
	// TrustedProxies lists the CIDRs or IPs allowed to set X-Forwarded-For.
	// Empty means the socket peer is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo MongoConfig
	Redis RedisConfig
	Auth  AuthConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=wedding_registry"`
	// ServerSelection bounds how long a query waits for a reachable node.
	ServerSelection time.Duration `env:"MONGO_SERVER_SELECTION_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB,         default=0"`
	OpTimeout time.Duration `env:"REDIS_OP_TIMEOUT, default=500ms"`
}

type AuthConfig struct {
	SessionTTL    time.Duration `env:"SESSION_TTL,         default=168h"`
	CookieName    string        `env:"SESSION_COOKIE_NAME, default=cms_session"`
	CookieDomain  string        `env:"COOKIE_DOMAIN,       default=ronagung.dev"`
	CMSOrigin     string        `env:"CMS_ORIGIN,          default=https://cms.ronagung.dev"`
	AllowedOrigin []string      `env:"ALLOWED_ORIGINS,     default=https://cms.ronagung.dev,https://ronagung.dev,http://localhost:5173,http://localhost:3001"`

	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=10"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`

	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1h"`
	HashWorkers   int           `env:"HASH_WORKERS,           default=4"`
}

// Load reads an optional .env.local and .env, then resolves configuration from
// environment variables using go-envconfig. Variables already set in the
// process environment win over dotenv files.
func Load(ctx context.Context) (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom resolves configuration from l. Tests use envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.BasePath = normalizeBasePath(cfg.BasePath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether cookies must always be cross-site.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// Validate rejects settings the auth layer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.IsProduction() && strings.TrimSpace(c.Auth.CookieDomain) == "" {
		errs = append(errs, errors.New("COOKIE_DOMAIN is required in production"))
	}
	if _, err := c.TrustedProxyNets(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.LoginMaxAttempts < 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must not be negative"))
	}
	return errors.Join(errs...)
}

// TrustedProxyNets parses TrustedProxies. A bare IP becomes a single-host
// network.
func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", raw)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	return "/" + strings.Trim(p, "/")
}
