// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the polls server.

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Public pages (HTML):

	GET /                    - Redirect to /polls
	GET /polls               - Published polls, ?q= search, ?page= pagination
	GET /polls/{id}          - Voting form
	GET /polls/{id}/results  - Vote counts
	    /polls/{id}/vote     - Vote submission (POST only, others get 405)

Admin API (JSON, requires X-Admin-Key):

	GET    /admin/questions              - List questions, ?q= search
	POST   /admin/questions              - Create question with optional choices
	GET    /admin/questions/{id}         - Question with choices
	PUT    /admin/questions/{id}         - Update text or publication date
	DELETE /admin/questions/{id}         - Delete question and its choices
	POST   /admin/questions/{id}/choices - Add choice
	GET    /admin/choices                - List choices, ?question= and ?q= filters
	PUT    /admin/choices/{id}           - Update text or position
	DELETE /admin/choices/{id}           - Delete choice

Every route except /health and / is wrapped in middleware.WithLogging.
*/
package router
