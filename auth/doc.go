// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides voter token signing and verification.

# Voter Tokens

A TokenService binds a voter identity (a phone number) to a signed,
stateless capability that travels in the ballot link:

	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenMaxAge)
	token, err := tokens.Issue("+59170000000")
	identity, err := tokens.Verify(token)

Tokens have three dot-separated parts: the URL-safe base64 identity, the
issue time in base36 Unix seconds, and an HMAC-SHA256 over the first two
parts. Nothing is stored server-side.

Verify distinguishes two failures:

  - ErrInvalidSignature: malformed, truncated, tampered, or signed with another key
  - ErrExpired: valid signature but older than the configured max age

A zero max age disables expiry. Tokens remain replayable until they
expire; the ledger's unique identity constraint is what enforces a single
vote, not the token.

Identities are signed exactly as given. Normalization (for example
stripping a "whatsapp:" prefix) happens before Issue.

# IP Hashing

For privacy-preserving log correlation:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
