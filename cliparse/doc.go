// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Postgres connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - PublicBaseURL: Prefix for ballot links sent to voters
  - TrustProxy: Read client IPs from proxy headers (default: false)
  - TokenSecret: HMAC key for voter tokens (required)
  - TokenMaxAge: Token lifetime (default: 1h, 0 = never expires)
  - WebhookAuthToken: Verifies X-Twilio-Signature on the webhook (optional)
  - LinksAPIKey: X-Admin-Key for POST /links (optional, empty disables the route)
  - ReputationAPIKey: Proxy/VPN/Tor lookup key (optional, empty disables)
  - ReputationURL, ReputationTimeout: Lookup endpoint and timeout (default: 3s)
  - RateWindow: Per-origin throttle window (default: 60s)
  - MaxVotesPerOrigin: Recorded votes allowed per origin (default: 10)
  - RedisURL: Shared rate limiter backend (optional)

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	PUBLIC_BASE_URL      → --base-url
	TRUST_PROXY          → --trust-proxy
	TOKEN_SECRET         → --token-secret
	TOKEN_MAX_AGE        → --token-max-age
	WEBHOOK_AUTH_TOKEN   → --webhook-auth-token
	LINKS_API_KEY        → --links-key
	REPUTATION_API_KEY   → --reputation-key
	REPUTATION_URL       → --reputation-url
	REPUTATION_TIMEOUT   → --reputation-timeout
	RATE_WINDOW          → --rate-window
	MAX_VOTES_PER_ORIGIN → --max-votes-per-origin
	REDIS_URL            → --redis

CLI flags take precedence over environment variables. Durations accept Go
duration syntax ("90s", "1h") or a bare number of seconds.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL or TOKEN_SECRET is missing
  - DATABASE_TYPE is not sqlite or postgres
  - MAX_VOTES_PER_ORIGIN is below 1
  - a duration does not parse or is negative
*/
package cliparse
