// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/tuvoto/auth"
	"github.com/danielhkuo/tuvoto/ledger"
)

// TokenIssuer signs and verifies voter tokens
type TokenIssuer interface {
	Issue(identity string) (string, error)
	Verify(token string) (string, error)
}

// Ledger is the vote store as seen by the orchestrator
type Ledger interface {
	HasVoted(ctx context.Context, identity string) (bool, error)
	Record(ctx context.Context, identity string, ballot ledger.Ballot, origin string) (ledger.VoteRecord, error)
}

// AbuseGuard is the set of per-origin checks
type AbuseGuard interface {
	CheckReputation(ctx context.Context, origin string) bool
	CheckRate(ctx context.Context, origin string) (bool, error)
	CheckOriginCap(ctx context.Context, origin string, maxVotes int) (bool, error)
}

type Options struct {
	// BaseURL prefixes ballot links, e.g. https://tuvotoseguro.com
	BaseURL           string
	MaxVotesPerOrigin int
	// RateWindow is reported back to throttled voters
	RateWindow time.Duration
	// LogSalt keys the origin hash written to logs
	LogSalt string
}

// Link is what the messaging channel sends back to the voter
type Link struct {
	Identity string
	Token    string
	URL      string
}

// Service sequences tokens, abuse checks and the ledger for each voter
type Service struct {
	tokens TokenIssuer
	ledger Ledger
	guard  AbuseGuard
	opts   Options
	now    func() time.Time
}

func NewService(tokens TokenIssuer, l Ledger, g AbuseGuard, opts Options) *Service {
	return &Service{tokens: tokens, ledger: l, guard: g, opts: opts, now: time.Now}
}

// NormalizeIdentity strips the messaging channel prefix and whitespace
func NormalizeIdentity(raw string) string {
	id := strings.TrimSpace(raw)
	if i := strings.IndexByte(id, ':'); i >= 0 && strings.EqualFold(id[:i], "whatsapp") {
		id = id[i+1:]
	}
	return strings.Join(strings.Fields(id), "")
}

// IssueLink handles an inbound contact: NoToken -> TokenIssued
func (s *Service) IssueLink(rawIdentity string) (Link, error) {
	identity := NormalizeIdentity(rawIdentity)
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return Link{}, err
	}

	slog.Info("voting link issued")
	return Link{
		Identity: identity,
		Token:    token,
		URL:      strings.TrimRight(s.opts.BaseURL, "/") + "/votar?token=" + url.QueryEscape(token),
	}, nil
}

// OpenBallot handles a followed link: TokenIssued -> BallotShown | Rejected.
// Checks short-circuit in order: token, already voted, reputation, rate, cap.
func (s *Service) OpenBallot(ctx context.Context, token, origin string) (Decision, error) {
	identity, reason := s.verify(token)
	if reason != ReasonNone {
		return s.reject(reason, origin), nil
	}

	voted, err := s.ledger.HasVoted(ctx, identity)
	if err != nil {
		return Decision{}, fmt.Errorf("open ballot: %w", err)
	}
	if voted {
		return s.reject(ReasonAlreadyVoted, origin), nil
	}

	if s.guard.CheckReputation(ctx, origin) {
		return s.reject(ReasonSuspiciousOrigin, origin), nil
	}

	allowed, err := s.guard.CheckRate(ctx, origin)
	if err != nil {
		return Decision{}, fmt.Errorf("open ballot: %w", err)
	}
	if !allowed {
		d := s.reject(ReasonRateLimited, origin)
		d.RetryAfter = s.opts.RateWindow
		return d, nil
	}

	if reason, err = s.checkCap(ctx, origin); err != nil {
		return Decision{}, fmt.Errorf("open ballot: %w", err)
	}
	if reason != ReasonNone {
		return s.reject(reason, origin), nil
	}

	return Decision{State: StateBallotShown, Identity: identity}, nil
}

// SubmitBallot handles a submission: BallotShown -> Recorded | Rejected.
// The form is validated before any store access. The rate limit is only
// applied when the ballot is opened so filling in the form is not throttled.
func (s *Service) SubmitBallot(ctx context.Context, token, origin string, form BallotForm) (Decision, error) {
	identity, reason := s.verify(token)
	if reason != ReasonNone {
		return s.reject(reason, origin), nil
	}

	ballot, verrs := ValidateBallot(form, s.now())
	if len(verrs) > 0 {
		d := s.reject(ReasonValidation, origin)
		d.Errors = verrs
		return d, nil
	}

	voted, err := s.ledger.HasVoted(ctx, identity)
	if err != nil {
		return Decision{}, fmt.Errorf("submit ballot: %w", err)
	}
	if voted {
		return s.reject(ReasonAlreadyVoted, origin), nil
	}

	if s.guard.CheckReputation(ctx, origin) {
		return s.reject(ReasonSuspiciousOrigin, origin), nil
	}

	if reason, err = s.checkCap(ctx, origin); err != nil {
		return Decision{}, fmt.Errorf("submit ballot: %w", err)
	}
	if reason != ReasonNone {
		return s.reject(reason, origin), nil
	}

	rec, err := s.ledger.Record(ctx, identity, ballot, origin)
	if errors.Is(err, ledger.ErrDuplicateIdentity) {
		// Lost the race against a concurrent submission for the same identity
		return s.reject(ReasonAlreadyVoted, origin), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("submit ballot: %w", err)
	}

	slog.Info("vote recorded", "vote_id", rec.ID, "origin", auth.HashIP(origin, s.opts.LogSalt))
	return Decision{State: StateRecorded, Identity: identity, Record: rec}, nil
}

func (s *Service) verify(token string) (string, Reason) {
	identity, err := s.tokens.Verify(token)
	switch {
	case err == nil:
		return identity, ReasonNone
	case errors.Is(err, auth.ErrExpired):
		return "", ReasonExpired
	default:
		return "", ReasonInvalidSignature
	}
}

func (s *Service) checkCap(ctx context.Context, origin string) (Reason, error) {
	allowed, err := s.guard.CheckOriginCap(ctx, origin, s.opts.MaxVotesPerOrigin)
	if err != nil {
		return ReasonNone, err
	}
	if !allowed {
		return ReasonOriginCap, nil
	}
	return ReasonNone, nil
}

func (s *Service) reject(reason Reason, origin string) Decision {
	slog.Info("voting attempt rejected", "reason", string(reason), "origin", auth.HashIP(origin, s.opts.LogSalt))
	return rejected(reason)
}
