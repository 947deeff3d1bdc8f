// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting sequences a voter from first contact to a recorded vote.

# States

	NoToken → TokenIssued → BallotShown → Recorded
	                      ↘ Rejected   ↘ Rejected

IssueLink signs the normalized identity and builds the ballot link.
OpenBallot and SubmitBallot each return a Decision: either the next state
or StateRejected with a Reason.

# Check Order

OpenBallot stops at the first failing check:

	token → already voted → reputation → rate → origin cap

SubmitBallot validates the form before touching the store, then:

	token → fields → already voted → reputation → origin cap → record

A submission that loses the race to a concurrent one for the same
identity is reported as already voted.

# Errors

Rejections are values, not errors. Each Reason has a stable Message
for the voter and a Retryable flag. An error return always means the
store or limiter failed.
*/
package voting
