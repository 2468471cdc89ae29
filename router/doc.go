// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the CampusVote API.

# Route Registration

NewComponents wires the services once; NewRouter builds an http.ServeMux
over them:

	c, err := router.NewComponents(store, cfg, logger)
	mux := router.NewRouter(c, cfg)

main keeps the Components to drain the admission controller on shutdown.

# Endpoints

Health and observer metrics:

	GET /health

Voting (bearer token):

	POST /elections/{id}/votes

Results:

	GET  /elections/{id}/tally
	POST /elections/{id}/tally/reconcile (admin)

Lifecycle notifications (admin):

	POST /notifications/election-status
	POST /notifications/candidate-approved

Live events:

	GET /ws?token=...
*/
package router
