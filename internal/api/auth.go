package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"showroom/internal/config"
	"showroom/internal/domain"
	"showroom/internal/logging"

	"github.com/rs/zerolog"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrQuotaExceeded    = errors.New("quota exceeded")
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	clientKeyUnknown      = "unknown"
)

// Credentials are what a caller presented on one request.
type Credentials struct {
	APIKey string
	Extra  string
	Remote string
}

func (c Credentials) clientKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.Remote != "" {
		return c.Remote
	}
	return clientKeyUnknown
}

// Guard applies api-key auth, permissions, the per-key rate limit and the
// shared quota. HTTP and gRPC both go through it.
type Guard struct {
	cfg config.APIConfig

	clientsByAPIKey map[string]config.APIClientKey
	limiter         *rateLimiter
	quota           domain.QuotaRepository
	log             *zerolog.Logger
}

// NewGuard builds a guard. quota may be nil to disable the shared quota.
func NewGuard(cfg config.APIConfig, quota domain.QuotaRepository, logger *zerolog.Logger) *Guard {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}

	return &Guard{
		cfg:             cfg,
		clientsByAPIKey: m,
		limiter:         newRateLimiter(cfg.RateLimit),
		quota:           quota,
		log:             logging.Component(logger, "auth"),
	}
}

func (g *Guard) apiKeyHeader() string {
	if h := strings.ToLower(strings.TrimSpace(g.cfg.Auth.HeaderAPIKey)); h != "" {
		return h
	}
	return apiKeyHeaderDefault
}

func (g *Guard) extraHeader() string {
	if h := strings.ToLower(strings.TrimSpace(g.cfg.Auth.HeaderExtra)); h != "" {
		return h
	}
	return apiExtraHeaderDefault
}

// Check admits or rejects one request needing the given permission.
// An empty permission only requires a valid key.
func (g *Guard) Check(ctx context.Context, creds Credentials, permission string) error {
	if g.cfg.Auth.Enabled {
		if err := g.checkAuth(creds, permission); err != nil {
			return err
		}
	}
	if err := g.checkRateLimit(creds); err != nil {
		return err
	}
	return g.checkQuota(ctx, creds)
}

func (g *Guard) checkAuth(creds Credentials, permission string) error {
	if creds.APIKey == "" || creds.Extra == "" {
		return fmt.Errorf("%w: missing api key headers", ErrUnauthenticated)
	}

	client, ok := g.clientsByAPIKey[creds.APIKey]
	if !ok {
		return fmt.Errorf("%w: invalid api key", ErrUnauthenticated)
	}

	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(creds.Extra)) != 1 {
		return fmt.Errorf("%w: invalid extra header", ErrUnauthenticated)
	}

	return checkPermissions(client, permission)
}

func checkPermissions(client config.APIClientKey, required string) error {
	if required == "" {
		return nil
	}

	// If permissions list is empty, treat as allow-all.
	if len(client.Permissions) == 0 {
		return nil
	}

	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires %s", ErrPermissionDenied, client.Name, required)
}

func (g *Guard) checkRateLimit(creds Credentials) error {
	if g.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	if !g.limiter.getLimiter(creds.clientKey()).Allow() {
		return ErrRateLimited
	}
	return nil
}

// checkQuota fails open: a broken quota store must not take the API down.
func (g *Guard) checkQuota(ctx context.Context, creds Credentials) error {
	if g.quota == nil || g.cfg.Quota.Limit <= 0 {
		return nil
	}

	key := creds.clientKey()
	ok, err := g.quota.Allow(ctx, key, g.cfg.Quota.Limit, g.cfg.Quota.Window)
	if err != nil {
		g.log.Warn().Err(err).Str("client", key).Msg("Quota check failed, allowing request")
		return nil
	}
	if !ok {
		return ErrQuotaExceeded
	}
	return nil
}
