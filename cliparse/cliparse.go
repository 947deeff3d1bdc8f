package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPort              = 3318
	DefaultTokenMaxAge       = time.Hour
	DefaultRateWindow        = 60 * time.Second
	DefaultMaxVotesPerOrigin = 10
	DefaultReputationURL     = "https://vpnapi.io/api"
	DefaultReputationTimeout = 3 * time.Second
	DefaultPublicBaseURL     = "http://localhost:3318"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	PublicBaseURL string
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only safe behind a proxy that overwrites those headers.
	TrustProxy bool

	// Token signing
	TokenSecret string
	TokenMaxAge time.Duration // 0 disables expiry

	// Link issuing channels
	WebhookAuthToken string // messaging provider auth token, empty skips signature checks
	LinksAPIKey      string // X-Admin-Key for POST /links, empty disables it

	// Abuse control
	ReputationAPIKey  string
	ReputationURL     string
	ReputationTimeout time.Duration
	RateWindow        time.Duration
	MaxVotesPerOrigin int
	RedisURL          string
}

// ParseFlags validates flags and fills in defaults from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("tuvoto", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.PublicBaseURL, "base-url", "", "Public base URL used in ballot links")
	trustProxy := fs.String("trust-proxy", "", "Trust X-Forwarded-For for client IPs (true/false)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Token signing secret (prefer env)")
	fs.StringVar(&cfg.ReputationAPIKey, "reputation-key", "", "Reputation API key (prefer env)")
	fs.StringVar(&cfg.WebhookAuthToken, "webhook-auth-token", "", "Messaging provider auth token (prefer env)")
	fs.StringVar(&cfg.LinksAPIKey, "links-key", "", "Admin key for POST /links (prefer env)")

	fs.StringVar(&cfg.ReputationURL, "reputation-url", "", "Reputation API base URL")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the shared rate limiter")
	tokenMaxAge := fs.String("token-max-age", "", "Token max age (0 disables expiry)")
	reputationTimeout := fs.String("reputation-timeout", "", "Reputation lookup timeout")
	rateWindow := fs.String("rate-window", "", "Per-origin rate limit window")
	fs.IntVar(&cfg.MaxVotesPerOrigin, "max-votes-per-origin", 0, "Maximum recorded votes per origin")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = envOr("PUBLIC_BASE_URL", DefaultPublicBaseURL)
	}

	if *trustProxy == "" {
		*trustProxy = os.Getenv("TRUST_PROXY")
	}
	if *trustProxy != "" {
		v, err := strconv.ParseBool(*trustProxy)
		if err != nil {
			return Config{}, errors.New("invalid TRUST_PROXY value")
		}
		cfg.TrustProxy = v
	}

	// Secrets - MUST be provided
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}

	// Optional: an empty key disables reputation checks
	if cfg.ReputationAPIKey == "" {
		cfg.ReputationAPIKey = os.Getenv("REPUTATION_API_KEY")
	}
	if cfg.WebhookAuthToken == "" {
		cfg.WebhookAuthToken = os.Getenv("WEBHOOK_AUTH_TOKEN")
	}
	if cfg.LinksAPIKey == "" {
		cfg.LinksAPIKey = os.Getenv("LINKS_API_KEY")
	}
	if cfg.ReputationURL == "" {
		cfg.ReputationURL = envOr("REPUTATION_URL", DefaultReputationURL)
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	var err error
	if cfg.TokenMaxAge, err = parseDuration(*tokenMaxAge, "TOKEN_MAX_AGE", DefaultTokenMaxAge); err != nil {
		return Config{}, err
	}
	if cfg.ReputationTimeout, err = parseDuration(*reputationTimeout, "REPUTATION_TIMEOUT", DefaultReputationTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RateWindow, err = parseDuration(*rateWindow, "RATE_WINDOW", DefaultRateWindow); err != nil {
		return Config{}, err
	}
	if cfg.TokenMaxAge < 0 || cfg.ReputationTimeout <= 0 || cfg.RateWindow <= 0 {
		return Config{}, errors.New("durations must be positive (TOKEN_MAX_AGE may be 0)")
	}

	if cfg.MaxVotesPerOrigin == 0 {
		if capStr := os.Getenv("MAX_VOTES_PER_ORIGIN"); capStr != "" {
			n, err := strconv.Atoi(capStr)
			if err != nil {
				return Config{}, errors.New("invalid MAX_VOTES_PER_ORIGIN env variable")
			}
			cfg.MaxVotesPerOrigin = n
		} else {
			cfg.MaxVotesPerOrigin = DefaultMaxVotesPerOrigin
		}
	}
	if cfg.MaxVotesPerOrigin < 1 {
		return Config{}, errors.New("MAX_VOTES_PER_ORIGIN must be at least 1")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDuration prefers the flag value, then the env variable, then the fallback.
// A bare integer is read as seconds.
func parseDuration(flagValue, envKey string, fallback time.Duration) (time.Duration, error) {
	raw := flagValue
	if raw == "" {
		raw = os.Getenv(envKey)
	}
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envKey, err)
	}
	return d, nil
}
