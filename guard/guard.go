// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"fmt"
)

// ReputationChecker classifies an origin. Implementations fail open.
type ReputationChecker interface {
	IsSuspicious(ctx context.Context, origin string) bool
}

// VoteCounter is the slice of the ledger the guard needs
type VoteCounter interface {
	CountByOrigin(ctx context.Context, origin string) (int, error)
}

// Guard bundles the three abuse predicates. Each is independent; any single
// failure blocks the action.
type Guard struct {
	reputation ReputationChecker
	limiter    RateLimiter
	votes      VoteCounter
}

func New(reputation ReputationChecker, limiter RateLimiter, votes VoteCounter) *Guard {
	return &Guard{reputation: reputation, limiter: limiter, votes: votes}
}

// CheckReputation reports whether the origin looks like a proxy, VPN or Tor
func (g *Guard) CheckReputation(ctx context.Context, origin string) bool {
	if g.reputation == nil {
		return false
	}
	return g.reputation.IsSuspicious(ctx, origin)
}

// CheckRate reports whether the origin is outside its throttle window
func (g *Guard) CheckRate(ctx context.Context, origin string) (bool, error) {
	return g.limiter.Allow(ctx, origin)
}

// CheckOriginCap allows while fewer than maxVotes votes came from origin.
// Concurrent submissions may overshoot by a few; the cap is a deterrent.
func (g *Guard) CheckOriginCap(ctx context.Context, origin string, maxVotes int) (bool, error) {
	n, err := g.votes.CountByOrigin(ctx, origin)
	if err != nil {
		return false, fmt.Errorf("origin cap: %w", err)
	}
	return n < maxVotes, nil
}
