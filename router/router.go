// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/tuvoto/cliparse"
	"github.com/danielhkuo/tuvoto/handlers"
	"github.com/danielhkuo/tuvoto/middleware"
	"github.com/danielhkuo/tuvoto/voting"
)

func NewRouter(service *voting.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(service, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Messaging channel
	mux.HandleFunc("POST /whatsapp", middleware.WithLogging(votingHandler.Webhook))
	mux.HandleFunc("POST /links", middleware.WithLogging(votingHandler.IssueLink))

	// Ballot (public, token in query string)
	mux.HandleFunc("GET /votar", middleware.WithLogging(votingHandler.OpenBallot))
	mux.HandleFunc("POST /votar", middleware.WithLogging(votingHandler.SubmitBallot))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tuvoto API v1"))
	})

	return mux
}
