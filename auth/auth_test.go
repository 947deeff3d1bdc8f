// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, secret string, maxAge time.Duration, now time.Time) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, maxAge)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	identities := []string{
		"+59170000000",
		"whatsapp:+59170000000",
		"a",
		"número con espacios y ñ",
		"has.dots.inside",
	}

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, maxAge := range []time.Duration{0, time.Hour} {
		s := newTestService(t, "secret", maxAge, now)
		for _, id := range identities {
			token, err := s.Issue(id)
			require.NoError(t, err)

			got, err := s.Verify(token)
			require.NoError(t, err, "identity %q", id)
			assert.Equal(t, id, got)
		}
	}
}

func TestIssue_EmptyIdentity(t *testing.T) {
	s := newTestService(t, "secret", time.Hour, time.Now())
	_, err := s.Issue("")
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestIssue_DiffersOverTime(t *testing.T) {
	s := newTestService(t, "secret", time.Hour, time.Unix(1_700_000_000, 0))
	first, err := s.Issue("+59170000000")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Unix(1_700_000_001, 0) }
	second, err := s.Issue("+59170000000")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	s := newTestService(t, "secret", time.Hour, issued)
	token, err := s.Issue("+59170000000")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(time.Hour) }
	_, err = s.Verify(token)
	assert.NoError(t, err, "exactly max age is still valid")

	s.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_NoExpiryPolicy(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	s := newTestService(t, "secret", 0, issued)
	token, err := s.Issue("+59170000000")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(365 * 24 * time.Hour) }
	got, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "+59170000000", got)
}

func TestVerify_SignatureBitFlip(t *testing.T) {
	s := newTestService(t, "secret", time.Hour, time.Now())
	token, err := s.Issue("+59170000000")
	require.NoError(t, err)

	idx := strings.LastIndexByte(token, '.')
	sig, err := b64.DecodeString(token[idx+1:])
	require.NoError(t, err)

	for bit := 0; bit < len(sig)*8; bit += 37 {
		altered := append([]byte(nil), sig...)
		altered[bit/8] ^= 1 << (bit % 8)
		tampered := token[:idx+1] + b64.EncodeToString(altered)

		_, err := s.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalidSignature, "bit %d", bit)
	}
}

func TestVerify_InvalidTokens(t *testing.T) {
	s := newTestService(t, "secret", time.Hour, time.Now())
	token, err := s.Issue("+59170000000")
	require.NoError(t, err)

	other := newTestService(t, "other-secret", time.Hour, time.Now())
	foreign, err := other.Issue("+59170000000")
	require.NoError(t, err)

	forged, err := s.Issue("+59171111111")
	require.NoError(t, err)
	swapped := strings.SplitN(forged, ".", 2)[0] + token[strings.IndexByte(token, '.'):]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separators", "garbage"},
		{"truncated", token[:len(token)-4]},
		{"signature removed", token[:strings.LastIndexByte(token, '.')]},
		{"wrong key", foreign},
		{"payload swapped", swapped},
		{"non base64 signature", token[:strings.LastIndexByte(token, '.')+1] + "!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestVerify_TamperedAndExpiredIsInvalidSignature(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	s := newTestService(t, "secret", time.Minute, issued)
	token, err := s.Issue("+59170000000")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(time.Hour) }
	_, err = s.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("203.0.113.5", "salt")
	h2 := HashIP("203.0.113.5", "salt")
	h3 := HashIP("203.0.113.6", "salt")
	h4 := HashIP("203.0.113.5", "other")

	assert.Len(t, h1, 16)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, h1, h4)
}

func TestValidateAdminKey(t *testing.T) {
	tests := []struct {
		name     string
		provided string
		expected string
		wantErr  bool
	}{
		{"matching key", "links-key", "links-key", false},
		{"wrong key", "links-kez", "links-key", true},
		{"missing key", "", "links-key", true},
		{"prefix of key", "links", "links-key", true},
		{"not configured", "", "", true},
		{"not configured with key sent", "anything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.provided, tt.expected)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAdminKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignWebhook_SortsParamsByName(t *testing.T) {
	params := url.Values{
		"From": {"whatsapp:+59170000000"},
		"Body": {"hola"},
	}

	h := hmac.New(sha1.New, []byte("auth-token"))
	h.Write([]byte("https://tuvotoseguro.test/whatsapp" + "Bodyhola" + "Fromwhatsapp:+59170000000"))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))

	assert.Equal(t, expected, SignWebhook("auth-token", "https://tuvotoseguro.test/whatsapp", params))
}

func TestValidateWebhookSignature(t *testing.T) {
	const fullURL = "https://tuvotoseguro.test/whatsapp"
	params := url.Values{"From": {"whatsapp:+59170000000"}, "Body": {"hola"}}
	signature := SignWebhook("auth-token", fullURL, params)

	assert.NoError(t, ValidateWebhookSignature("auth-token", fullURL, params, signature))

	t.Run("missing signature", func(t *testing.T) {
		assert.ErrorIs(t, ValidateWebhookSignature("auth-token", fullURL, params, ""), ErrInvalidWebhookSignature)
	})

	t.Run("other auth token", func(t *testing.T) {
		assert.ErrorIs(t, ValidateWebhookSignature("other-token", fullURL, params, signature), ErrInvalidWebhookSignature)
	})

	t.Run("other URL", func(t *testing.T) {
		assert.ErrorIs(t, ValidateWebhookSignature("auth-token", "https://evil.test/whatsapp", params, signature), ErrInvalidWebhookSignature)
	})

	t.Run("sender changed", func(t *testing.T) {
		forged := url.Values{"From": {"whatsapp:+59179999999"}, "Body": {"hola"}}
		assert.ErrorIs(t, ValidateWebhookSignature("auth-token", fullURL, forged, signature), ErrInvalidWebhookSignature)
	})
}
