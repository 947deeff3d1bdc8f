// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"time"

	"github.com/danielhkuo/tuvoto/ledger"
)

// State is where an identity's attempt ended up
type State string

const (
	StateTokenIssued State = "token_issued"
	StateBallotShown State = "ballot_shown"
	StateRecorded    State = "recorded"
	StateRejected    State = "rejected"
)

// Reason says why an attempt was rejected. These are expected outcomes,
// not failures of the service.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "expired"
	ReasonAlreadyVoted     Reason = "already_voted"
	ReasonSuspiciousOrigin Reason = "suspicious_origin"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonOriginCap        Reason = "origin_cap_exceeded"
	ReasonValidation       Reason = "validation_failed"
)

var reasonMessages = map[Reason]string{
	ReasonInvalidSignature: "This voting link is not valid. Request a new one from the messaging channel.",
	ReasonExpired:          "This voting link has expired. Request a new one from the messaging channel.",
	ReasonAlreadyVoted:     "You have already voted. Each phone number can vote only once.",
	ReasonSuspiciousOrigin: "Voting through a proxy, VPN or Tor is not allowed. Disconnect it and try again.",
	ReasonRateLimited:      "Too many requests from your network. Wait a moment and try again.",
	ReasonOriginCap:        "The vote limit for your network has been reached.",
	ReasonValidation:       "Some ballot fields are missing or invalid.",
}

// Message is the stable user-facing text for the reason
func (r Reason) Message() string {
	return reasonMessages[r]
}

// Retryable reports whether the same identity can succeed later without
// changing anything but time or input
func (r Reason) Retryable() bool {
	switch r {
	case ReasonRateLimited, ReasonValidation, ReasonExpired, ReasonInvalidSignature:
		return true
	}
	return false
}

// Decision is the result of one orchestrator step
type Decision struct {
	State    State
	Reason   Reason
	Identity string

	// Set for ReasonValidation
	Errors []ValidationError
	// Set for ReasonRateLimited
	RetryAfter time.Duration
	// Set for StateRecorded
	Record ledger.VoteRecord
}

func rejected(reason Reason) Decision {
	return Decision{State: StateRejected, Reason: reason}
}
