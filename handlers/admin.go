// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

// AdminHandler serves the JSON admin API for questions and choices.
// Routes are guarded by middleware.RequireAdminKey.
type AdminHandler struct {
	cfg   cliparse.Config
	store *store.Store
	now   func() time.Time
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{cfg: cfg, store: store.New(db), now: time.Now}
}

// storeError writes the response for a failed store call
func storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, what+" not found")
		return
	}
	slog.Error("admin store call failed", "error", err, "entity", what)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}

// ListQuestions handles GET /admin/questions
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, err, "Question")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.QuestionListResponse{Questions: questions})
}

// CreateQuestion handles POST /admin/questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_text is required")
		return
	}

	choices := make([]string, 0, len(req.Choices))
	for _, c := range req.Choices {
		c = strings.TrimSpace(c)
		if c == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "choices cannot be blank")
			return
		}
		choices = append(choices, c)
	}

	pubDate := h.now()
	if req.PubDate != nil {
		pubDate = *req.PubDate
	}

	created, err := h.store.CreateQuestion(r.Context(), text, pubDate, choices)
	if err != nil {
		storeError(w, err, "Question")
		return
	}

	slog.Info("question created", "question_id", created.Question.ID, "choices", len(created.Choices))
	middleware.JSONResponse(w, http.StatusCreated, created)
}

// GetQuestion handles GET /admin/questions/{id}
func (h *AdminHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	question, err := h.store.Question(ctx, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "Question")
		return
	}

	choices, err := h.store.Choices(ctx, question.ID)
	if err != nil {
		storeError(w, err, "Choice")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.QuestionWithChoices{
		Question: question,
		Choices:  choices,
	})
}

// UpdateQuestion handles PUT /admin/questions/{id}
func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.QuestionText != nil {
		text := strings.TrimSpace(*req.QuestionText)
		if text == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "question_text cannot be blank")
			return
		}
		req.QuestionText = &text
	}

	question, err := h.store.UpdateQuestion(r.Context(), r.PathValue("id"), req.QuestionText, req.PubDate)
	if err != nil {
		storeError(w, err, "Question")
		return
	}

	slog.Info("question updated", "question_id", question.ID)
	middleware.JSONResponse(w, http.StatusOK, question)
}

// DeleteQuestion handles DELETE /admin/questions/{id}
func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteQuestion(r.Context(), id); err != nil {
		storeError(w, err, "Question")
		return
	}

	slog.Info("question deleted", "question_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// AddChoice handles POST /admin/questions/{id}/choices
func (h *AdminHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	var req models.AddChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	text := strings.TrimSpace(req.ChoiceText)
	if text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text is required")
		return
	}

	choice, err := h.store.AddChoice(r.Context(), r.PathValue("id"), text)
	if err != nil {
		storeError(w, err, "Question")
		return
	}

	slog.Info("choice added", "question_id", choice.QuestionID, "choice_id", choice.ID)
	middleware.JSONResponse(w, http.StatusCreated, choice)
}

// ListChoices handles GET /admin/choices
func (h *AdminHandler) ListChoices(w http.ResponseWriter, r *http.Request) {
	choices, err := h.store.ListChoices(r.Context(), store.ChoiceFilter{
		QuestionID: r.URL.Query().Get("question"),
		Query:      r.URL.Query().Get("q"),
	})
	if err != nil {
		storeError(w, err, "Choice")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ChoiceListResponse{Choices: choices})
}

// UpdateChoice handles PUT /admin/choices/{id}
func (h *AdminHandler) UpdateChoice(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ChoiceText != nil {
		text := strings.TrimSpace(*req.ChoiceText)
		if text == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text cannot be blank")
			return
		}
		req.ChoiceText = &text
	}
	if req.Position != nil && *req.Position < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position cannot be negative")
		return
	}

	choice, err := h.store.UpdateChoice(r.Context(), r.PathValue("id"), req.ChoiceText, req.Position)
	if err != nil {
		storeError(w, err, "Choice")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, choice)
}

// DeleteChoice handles DELETE /admin/choices/{id}
func (h *AdminHandler) DeleteChoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteChoice(r.Context(), id); err != nil {
		storeError(w, err, "Choice")
		return
	}

	slog.Info("choice deleted", "choice_id", id)
	w.WriteHeader(http.StatusNoContent)
}
