// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the tuvoto API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(service, cfg)

# Endpoints

Health:

	GET /health

Messaging channel:

	POST /whatsapp - Inbound message webhook, replies with a TwiML link
	POST /links    - Same, as JSON (requires X-Admin-Key)

Ballot (public, token in the query string):

	GET  /votar?token= - Open the ballot
	POST /votar?token= - Submit the ballot

# Handler Initialization

The voting service is built in main from the store, guard and token
service, and shared by every handler:

	votingHandler := handlers.NewVotingHandler(service, cfg)
*/
package router
