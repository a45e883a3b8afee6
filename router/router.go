// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/handlers"
	"github.com/danielhkuo/polls/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public pages
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.Index))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.Detail))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(pollHandler.Results))

	// Any method; the handler answers non-POST with 405 itself
	mux.HandleFunc("/polls/{id}/vote", middleware.WithLogging(pollHandler.Vote))

	// Admin API
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdminKey(cfg.AdminKey, h))
	}
	mux.HandleFunc("GET /admin/questions", admin(adminHandler.ListQuestions))
	mux.HandleFunc("POST /admin/questions", admin(adminHandler.CreateQuestion))
	mux.HandleFunc("GET /admin/questions/{id}", admin(adminHandler.GetQuestion))
	mux.HandleFunc("PUT /admin/questions/{id}", admin(adminHandler.UpdateQuestion))
	mux.HandleFunc("DELETE /admin/questions/{id}", admin(adminHandler.DeleteQuestion))
	mux.HandleFunc("POST /admin/questions/{id}/choices", admin(adminHandler.AddChoice))
	mux.HandleFunc("GET /admin/choices", admin(adminHandler.ListChoices))
	mux.HandleFunc("PUT /admin/choices/{id}", admin(adminHandler.UpdateChoice))
	mux.HandleFunc("DELETE /admin/choices/{id}", admin(adminHandler.DeleteChoice))

	// Root redirects to the poll index
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/polls", http.StatusFound)
	})

	return mux
}
