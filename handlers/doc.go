// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers of the polls server.

# Handler Types

  - PollHandler: public HTML pages and vote submission
  - AdminHandler: JSON admin API for questions and choices

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)

# Visibility

A question is public once its pub_date is at or before now. Detail, results
and vote requests for anything else answer 404, so future questions cannot
be probed or voted on.

# Voting

POST /polls/{id}/vote takes one or more "choice" form values:

	choice=<choice id>&choice=<choice id>

The session's vote record is read at entry and handed to castVote, which
returns an outcome and the record to write back:

	duplicate  question already in the record: warning, redirect to results
	invalid    empty selection, or any id not a choice of this question:
	           the form is shown again with an error, nothing is written
	recorded   every counter was incremented in one transaction: success
	           message, question added to the record, redirect to results

Counters are incremented in the database (votes = votes + 1), never
computed in Go, so simultaneous votes are never lost. A storage failure
rolls back every increment of the submission and answers 500 without
touching the session.

Any method other than POST gets 405 with Allow: POST.

# Admin API

Every route requires X-Admin-Key. Errors use models.ErrorResponse:

	{"error": "Not Found", "message": "Question not found"}

The admin API never edits vote counters.
*/
package handlers
