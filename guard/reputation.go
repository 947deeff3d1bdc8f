// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrReputationLookup wraps every lookup failure. It never leaves this package.
var ErrReputationLookup = errors.New("reputation lookup failed")

// ReputationClient queries a proxy/VPN/Tor classification service.
// The default wire format is vpnapi.io: GET {base}/{ip}?key={key}.
type ReputationClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewReputationClient builds a client. An empty apiKey disables lookups.
func NewReputationClient(baseURL, apiKey string, timeout time.Duration) *ReputationClient {
	return &ReputationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an API credential is configured
func (c *ReputationClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type reputationResponse struct {
	Security struct {
		VPN   boolish `json:"vpn"`
		Proxy boolish `json:"proxy"`
		Tor   boolish `json:"tor"`
	} `json:"security"`
}

// IsSuspicious is true when the origin is a proxy, VPN or Tor exit.
// Any failure fails open.
func (c *ReputationClient) IsSuspicious(ctx context.Context, origin string) bool {
	if !c.Enabled() {
		return false
	}

	suspicious, err := c.lookup(ctx, origin)
	if err != nil {
		slog.Warn("reputation check failed open", "error", err)
		return false
	}
	return suspicious
}

func (c *ReputationClient) lookup(ctx context.Context, origin string) (bool, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(origin) + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReputationLookup, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReputationLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", ErrReputationLookup, resp.StatusCode)
	}

	var body reputationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return false, fmt.Errorf("%w: %v", ErrReputationLookup, err)
	}

	return bool(body.Security.VPN || body.Security.Proxy || body.Security.Tor), nil
}

// boolish accepts true/false, 1/0 and "yes"/"no"/"true"/"false"
type boolish bool

func (b *boolish) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y":
		*b = true
	case "false", "no", "0", "n", "":
		*b = false
	default:
		return fmt.Errorf("not a boolean: %s", data)
	}
	return nil
}
