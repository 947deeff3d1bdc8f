// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingSecret    = errors.New("token signing secret is required")
	ErrEmptyIdentity    = errors.New("identity must not be empty")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")

	ErrInvalidAdminKey         = errors.New("invalid admin key")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
)

var b64 = base64.RawURLEncoding.Strict()

// TokenService signs and verifies voter tokens.
// A token is base64url(identity).base36(issuedAt).base64url(HMAC-SHA256)
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenService returns a service keyed by secret. A zero maxAge means
// tokens never expire.
func NewTokenService(secret string, maxAge time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenService{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

// MaxAge returns the configured token lifetime (0 = unlimited)
func (s *TokenService) MaxAge() time.Duration {
	return s.maxAge
}

// Issue signs identity as-is; callers normalize before issuing
func (s *TokenService) Issue(identity string) (string, error) {
	if identity == "" {
		return "", ErrEmptyIdentity
	}

	payload := b64.EncodeToString([]byte(identity)) + "." + strconv.FormatInt(s.now().Unix(), 36)
	return payload + "." + b64.EncodeToString(s.sign(payload)), nil
}

// Verify checks the signature first and the age second, so a tampered
// token is always ErrInvalidSignature even when it is also old.
func (s *TokenService) Verify(token string) (string, error) {
	idx := strings.LastIndexByte(token, '.')
	if idx <= 0 {
		return "", ErrInvalidSignature
	}
	payload, sigPart := token[:idx], token[idx+1:]

	sig, err := b64.DecodeString(sigPart)
	if err != nil || !hmac.Equal(sig, s.sign(payload)) {
		return "", ErrInvalidSignature
	}

	identityPart, tsPart, ok := strings.Cut(payload, ".")
	if !ok {
		return "", ErrInvalidSignature
	}
	identity, err := b64.DecodeString(identityPart)
	if err != nil || len(identity) == 0 {
		return "", ErrInvalidSignature
	}
	issuedAt, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return "", ErrInvalidSignature
	}

	if s.maxAge > 0 && s.now().Sub(time.Unix(issuedAt, 0)) > s.maxAge {
		return "", ErrExpired
	}

	return string(identity), nil
}

func (s *TokenService) sign(payload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}

// ValidateAdminKey checks the provided admin key against the configured one.
// An empty configured key rejects every request.
func ValidateAdminKey(adminKey, expected string) error {
	if expected == "" || !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// SignWebhook computes the messaging provider's request signature:
// base64(HMAC-SHA1(authToken, fullURL + name/value of each param sorted by name))
func SignWebhook(authToken, fullURL string, params url.Values) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, name := range names {
		for _, v := range params[name] {
			b.WriteString(name)
			b.WriteString(v)
		}
	}

	h := hmac.New(sha1.New, []byte(authToken))
	h.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateWebhookSignature checks the X-Twilio-Signature header value
func ValidateWebhookSignature(authToken, fullURL string, params url.Values, signature string) error {
	expected := SignWebhook(authToken, fullURL, params)
	if signature == "" || !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidWebhookSignature
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for log correlation
	return hex.EncodeToString(sum[:8])
}
