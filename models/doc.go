// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request and response types for the API.

# Request Types

  - IssueLinkRequest: identity
  - SubmitBallotRequest: candidato, pais, ciudad, and optional latitud,
    longitud, documento, anio_nacimiento (all strings)

# Response Types

  - IssueLinkResponse: state, link
  - BallotResponse: state, identity
  - VoteRecordedResponse: state, vote_id, candidato, submitted_at, message
  - RejectionResponse: state, reason, message, retryable, retry_after, errors
  - ErrorResponse: error, message

Rejections are normal outcomes (already voted, throttled, invalid input)
and always carry a stable reason code. ErrorResponse is reserved for
malformed requests and server failures.
*/
package models
