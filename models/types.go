package models

import "time"

// Request types

// IssueLinkRequest is the JSON alternative to the messaging webhook
type IssueLinkRequest struct {
	Identity string `json:"identity"`
}

// SubmitBallotRequest carries form values as strings so numeric fields can
// be reported per field when they do not parse
type SubmitBallotRequest struct {
	Candidate string `json:"candidato"`
	Country   string `json:"pais"`
	City      string `json:"ciudad"`
	Latitude  string `json:"latitud,omitempty"`
	Longitude string `json:"longitud,omitempty"`
	Document  string `json:"documento,omitempty"`
	BirthYear string `json:"anio_nacimiento,omitempty"`
}

// Response types

type IssueLinkResponse struct {
	State string `json:"state"`
	Link  string `json:"link"`
}

type BallotResponse struct {
	State    string `json:"state"`
	Identity string `json:"identity"`
}

type VoteRecordedResponse struct {
	State       string    `json:"state"`
	VoteID      string    `json:"vote_id"`
	Candidate   string    `json:"candidato"`
	SubmittedAt time.Time `json:"submitted_at"`
	Message     string    `json:"message"`
}

type FieldError struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

// RejectionResponse is returned for every expected refusal. Reason is a
// stable machine code; Message is shown to the voter.
type RejectionResponse struct {
	State      string       `json:"state"`
	Reason     string       `json:"reason"`
	Message    string       `json:"message"`
	Retryable  bool         `json:"retryable"`
	RetryAfter string       `json:"retry_after,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
