// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the tuvoto API server.

tuvoto runs a one-vote-per-person citizen poll. Voters message a WhatsApp
number, receive a signed single-use link, open a ballot and submit it.
Abuse control limits what a single network can do: proxy/VPN/Tor origins
are refused, each origin is throttled, and each origin may record only a
bounded number of votes.

# Starting the Server

The server reads a .env file if present, then environment variables or CLI
flags:

	DATABASE_URL=file:tuvoto.db TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -token-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - TOKEN_SECRET (--token-secret): HMAC key for voting links

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PUBLIC_BASE_URL (--base-url): Prefix for voting links
  - TOKEN_MAX_AGE (--token-max-age): Link lifetime (default: 1h)
  - REPUTATION_API_KEY (--reputation-key): Enables proxy/VPN/Tor checks
  - RATE_WINDOW (--rate-window): Per-origin throttle (default: 60s)
  - MAX_VOTES_PER_ORIGIN (--max-votes-per-origin): default 10
  - REDIS_URL (--redis): Share the throttle across instances
  - TRUST_PROXY (--trust-proxy): Read client IPs from X-Forwarded-For
  - WEBHOOK_AUTH_TOKEN (--webhook-auth-token): Verify webhook signatures
  - LINKS_API_KEY (--links-key): Enable POST /links for a trusted channel

# Architecture

  - handlers: HTTP adapters (webhook, open ballot, submit ballot)
  - router: Route definitions using Go 1.22+ routing
  - voting: Orchestrator and ballot validation
  - guard: Reputation, rate and per-origin checks
  - ledger: One vote per identity
  - auth: Signed voting links
  - middleware: CORS, logging, JSON helpers, client IP
  - models: Request/response types
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
