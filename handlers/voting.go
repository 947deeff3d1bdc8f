// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/tuvoto/auth"
	"github.com/danielhkuo/tuvoto/cliparse"
	"github.com/danielhkuo/tuvoto/middleware"
	"github.com/danielhkuo/tuvoto/models"
	"github.com/danielhkuo/tuvoto/voting"
)

type VotingHandler struct {
	service *voting.Service
	cfg     cliparse.Config
}

func NewVotingHandler(service *voting.Service, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{service: service, cfg: cfg}
}

// twimlResponse is the messaging provider's reply document
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

const linkReply = "Hello! Thanks for contacting the Citizen Voting System.\n\n" +
	"To cast your vote, follow this link:\n%s\n\n" +
	"This link is personal and can be used to vote once."

// Webhook handles POST /whatsapp
func (h *VotingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	// Only the messaging provider may ask for a link; the reply carries it
	if h.cfg.WebhookAuthToken != "" {
		fullURL := strings.TrimRight(h.cfg.PublicBaseURL, "/") + r.URL.RequestURI()
		signature := r.Header.Get("X-Twilio-Signature")
		if err := auth.ValidateWebhookSignature(h.cfg.WebhookAuthToken, fullURL, r.PostForm, signature); err != nil {
			slog.Warn("webhook signature rejected", "has_signature", signature != "")
			middleware.ErrorResponse(w, http.StatusForbidden, "Invalid webhook signature")
			return
		}
	}

	from := r.PostForm.Get("From")
	if from == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "From is required")
		return
	}

	link, err := h.service.IssueLink(from)
	if errors.Is(err, auth.ErrEmptyIdentity) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "From is required")
		return
	}
	if err != nil {
		slog.Error("failed to issue voting link", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue link")
		return
	}

	body, err := xml.Marshal(twimlResponse{Message: fmt.Sprintf(linkReply, link.URL)})
	if err != nil {
		slog.Error("failed to encode reply", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue link")
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	w.Write(body)
}

// IssueLink handles POST /links for trusted channels that want JSON instead
// of TwiML. The caller vouches for the identity, so it needs the admin key.
func (h *VotingHandler) IssueLink(w http.ResponseWriter, r *http.Request) {
	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.LinksAPIKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.IssueLinkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	link, err := h.service.IssueLink(req.Identity)
	if errors.Is(err, auth.ErrEmptyIdentity) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "identity is required")
		return
	}
	if err != nil {
		slog.Error("failed to issue voting link", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue link")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.IssueLinkResponse{
		State: string(voting.StateTokenIssued),
		Link:  link.URL,
	})
}

// OpenBallot handles GET /votar?token=
func (h *VotingHandler) OpenBallot(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	origin := middleware.GetClientIP(r, h.cfg.TrustProxy)

	d, err := h.service.OpenBallot(r.Context(), token, origin)
	if err != nil {
		slog.Error("failed to open ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open ballot")
		return
	}

	if d.State != voting.StateBallotShown {
		h.writeRejection(w, d)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		State:    string(d.State),
		Identity: d.Identity,
	})
}

// SubmitBallot handles POST /votar?token=
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	origin := middleware.GetClientIP(r, h.cfg.TrustProxy)

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	d, err := h.service.SubmitBallot(r.Context(), token, origin, voting.BallotForm{
		Candidate: req.Candidate,
		Country:   req.Country,
		City:      req.City,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Document:  req.Document,
		BirthYear: req.BirthYear,
	})
	if err != nil {
		slog.Error("failed to submit ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	if d.State != voting.StateRecorded {
		h.writeRejection(w, d)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.VoteRecordedResponse{
		State:       string(d.State),
		VoteID:      d.Record.ID,
		Candidate:   d.Record.Ballot.Candidate,
		SubmittedAt: d.Record.SubmittedAt,
		Message:     "Your vote has been recorded. Thank you for taking part.",
	})
}

func (h *VotingHandler) writeRejection(w http.ResponseWriter, d voting.Decision) {
	resp := models.RejectionResponse{
		State:     string(voting.StateRejected),
		Reason:    string(d.Reason),
		Message:   d.Reason.Message(),
		Retryable: d.Reason.Retryable(),
	}

	if d.RetryAfter > 0 {
		secs := int((d.RetryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		// e.g. "1 minute from now"
		resp.RetryAfter = humanize.Time(time.Now().Add(d.RetryAfter))
	}

	for _, e := range d.Errors {
		resp.Errors = append(resp.Errors, models.FieldError{Field: e.Field, Problem: e.Problem})
	}

	middleware.JSONResponse(w, statusFor(d.Reason), resp)
}

func statusFor(reason voting.Reason) int {
	switch reason {
	case voting.ReasonInvalidSignature, voting.ReasonExpired:
		return http.StatusUnauthorized
	case voting.ReasonAlreadyVoted:
		return http.StatusConflict
	case voting.ReasonSuspiciousOrigin, voting.ReasonOriginCap:
		return http.StatusForbidden
	case voting.ReasonRateLimited:
		return http.StatusTooManyRequests
	case voting.ReasonValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
