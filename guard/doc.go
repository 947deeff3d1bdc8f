// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package guard implements per-origin abuse control.

# Predicates

A Guard evaluates three independent checks against a network origin:

	g := guard.New(reputationClient, limiter, ledger)

	suspicious := g.CheckReputation(ctx, ip)
	allowed, err := g.CheckRate(ctx, ip)
	allowed, err := g.CheckOriginCap(ctx, ip, cfg.MaxVotesPerOrigin)

Any single failing check blocks the action. Callers usually run reputation
first since it needs no local state.

# Reputation

ReputationClient calls a proxy/VPN/Tor classification API (vpnapi.io
format by default). The origin is suspicious when any of vpn, proxy or tor
is set. The client fails open: timeouts, transport errors, non-200
responses and malformed bodies are logged and treated as not suspicious.
Without an API key the client is disabled and makes no calls.

# Rate Limiting

RateLimiter implementations treat every call as an observation. An origin
is denied while any earlier attempt, allowed or denied, is inside the
window, so sustained polling keeps an origin throttled until it pauses for
a full window.

  - SQLLimiter: origin_access rows in the primary store, pruned per origin
  - RedisLimiter: one key per origin with SET ... GET and a window TTL

# Origin Cap

CheckOriginCap allows while the ledger holds fewer than maxVotes votes from
the origin. The count is not locked, so concurrent submissions can
overshoot slightly.
*/
package guard
