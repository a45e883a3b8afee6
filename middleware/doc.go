// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /polls", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# Recovery

Recover converts handler panics into a 500 response and an error log line.

# Admin Key

	mux.HandleFunc("GET /admin/questions", middleware.RequireAdminKey(cfg.AdminKey, h))

Requests must carry the configured key in X-Admin-Key; anything else gets a
401 JSON error.

# CORS

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers Content-Type,
Authorization and X-Admin-Key.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP

GetClientIP honours X-Forwarded-For and X-Real-IP. The vote handler logs a
salted hash of it, never the raw address.
*/
package middleware
