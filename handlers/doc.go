// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the tuvoto API.

# Handler Types

VotingHandler adapts HTTP requests to the voting service:

	votingHandler := handlers.NewVotingHandler(service, cfg)

# Voting Flow

	POST /whatsapp     → Webhook (form field From, TwiML reply with link)
	POST /links        → IssueLink (JSON alternative, requires X-Admin-Key)
	GET  /votar?token= → OpenBallot
	POST /votar?token= → SubmitBallot

A link is only as strong as the channel that asks for it. With
WebhookAuthToken set, Webhook checks X-Twilio-Signature before issuing;
IssueLink always requires the configured admin key.

The client IP is the origin for abuse checks. Proxy headers are only read
when TrustProxy is set.

# Status Codes

Rejections carry a stable reason code and a user-facing message:

	invalid_signature, expired     401
	already_voted                  409
	suspicious_origin              403
	origin_cap_exceeded            403
	rate_limited                   429 (Retry-After set)
	validation_failed              400 (errors lists each field)

Store failures return 500 with a generic message.
*/
package handlers
