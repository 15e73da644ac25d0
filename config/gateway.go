package config

import (
	"strings"
	"time"
)

// Session store backends.
const (
	StoreModeMemory   = "memory"
	StoreModeRedis    = "redis"
	StoreModePostgres = "postgres"
)

// GatewayConfig controls the gateway's backend target, tenancy
// resolution, and session behaviour.
type GatewayConfig struct {
	// APIBaseURL is the backend API origin all requests are dispatched to.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api/v1"`

	// Origin is the application origin used for host-based tenant
	// resolution, e.g. "https://greenfield.schoolerp.example".
	Origin string `env:"APP_ORIGIN" envDefault:""`

	// DefaultTenant is the tenant of last resort when neither a persisted
	// session nor the origin host resolves one.
	DefaultTenant string `env:"DEFAULT_TENANT" envDefault:""`

	// LoginPath is the backend login endpoint and the prefix of the login
	// screen; requests under it dispatch unauthenticated and never trip
	// the redirect guard.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/auth/login"`

	// ExemptPaths are additional path prefixes dispatched without
	// credential checks (pre-auth flows such as password reset).
	ExemptPaths []string `env:"EXEMPT_PATHS" envSeparator:","`

	// TokenSkew is the safety margin subtracted from the token expiry, so
	// a request does not leave with a credential about to lapse mid-flight.
	TokenSkew time.Duration `env:"TOKEN_SKEW" envDefault:"15s"`

	// StoreMode selects the session store backend: memory, redis, or
	// postgres.
	StoreMode string `env:"SESSION_STORE" envDefault:"memory"`

	// StorePrefix namespaces session keys so several gateway instances can
	// share one Redis or database.
	StorePrefix string `env:"SESSION_STORE_PREFIX" envDefault:"schoolerp:gateway:"`

	// Principal identifies this gateway instance's session rows in the
	// postgres backend.
	Principal string `env:"SESSION_PRINCIPAL" envDefault:"default"`
}

// Sanitize applies guardrails to gateway configuration.
func (c *GatewayConfig) Sanitize() {
	c.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(c.APIBaseURL), "/")
	c.Origin = strings.TrimSpace(c.Origin)

	if c.LoginPath == "" {
		c.LoginPath = "/auth/login"
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		c.LoginPath = "/" + c.LoginPath
	}

	// The login path is always exempt.
	exempt := []string{c.LoginPath}
	for _, p := range c.ExemptPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if p == c.LoginPath {
			continue
		}
		exempt = append(exempt, p)
	}
	c.ExemptPaths = exempt

	if c.TokenSkew < 0 {
		c.TokenSkew = 0
	}

	switch c.StoreMode {
	case StoreModeMemory, StoreModeRedis, StoreModePostgres:
	default:
		c.StoreMode = StoreModeMemory
	}

	if c.Principal == "" {
		c.Principal = "default"
	}
}
