// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/session"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/templates"
)

// PollHandler serves the public HTML pages and the vote form.
type PollHandler struct {
	cfg      cliparse.Config
	store    *store.Store
	sessions *session.Store
	now      func() time.Time
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{
		cfg:      cfg,
		store:    store.New(db),
		sessions: session.NewStore(db, cfg),
		now:      time.Now,
	}
}

// Index handles GET /polls
func (h *PollHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()
	query := r.URL.Query().Get("q")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.renderError(w, http.StatusNotFound, "Page not found.")
			return
		}
		page = n
	}

	pageSize := h.cfg.PageSize
	if pageSize < 1 {
		pageSize = cliparse.DefaultPageSize
	}

	questions, total, err := h.store.ListPublished(ctx, store.Filter{
		Query:  query,
		Now:    now,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		h.renderError(w, http.StatusInternalServerError, "")
		return
	}

	numPages := (total + pageSize - 1) / pageSize
	if numPages == 0 {
		numPages = 1
	}
	if page > numPages {
		h.renderError(w, http.StatusNotFound, "Page not found.")
		return
	}

	messages, ok := h.popMessages(w, r)
	if !ok {
		return
	}

	h.render(w, http.StatusOK, templates.Index, templates.IndexPage{
		Messages:  messages,
		Questions: questions,
		Query:     query,
		Page:      page,
		NumPages:  numPages,
		Now:       now,
	})
}

// Detail handles GET /polls/{id}
func (h *PollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	question, choices, ok := h.publishedQuestion(w, r)
	if !ok {
		return
	}

	messages, ok := h.popMessages(w, r)
	if !ok {
		return
	}

	h.render(w, http.StatusOK, templates.Detail, templates.DetailPage{
		Messages: messages,
		Question: question,
		Choices:  choices,
	})
}

// Results handles GET /polls/{id}/results
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	question, choices, ok := h.publishedQuestion(w, r)
	if !ok {
		return
	}

	messages, ok := h.popMessages(w, r)
	if !ok {
		return
	}

	qc := models.QuestionWithChoices{Question: question, Choices: choices}
	h.render(w, http.StatusOK, templates.Results, templates.ResultsPage{
		Messages: messages,
		Question: question,
		Choices:  choices,
		Total:    qc.TotalVotes(),
	})
}

// publishedQuestion loads the question named in the path together with its
// choices, writing a 404 or 500 page when that is not possible.
func (h *PollHandler) publishedQuestion(w http.ResponseWriter, r *http.Request) (models.Question, []models.Choice, bool) {
	ctx := r.Context()

	question, err := h.store.PublishedQuestion(ctx, r.PathValue("id"), h.now())
	if errors.Is(err, store.ErrNotFound) {
		h.renderError(w, http.StatusNotFound, "No poll matches the given query.")
		return models.Question{}, nil, false
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", r.PathValue("id"))
		h.renderError(w, http.StatusInternalServerError, "")
		return models.Question{}, nil, false
	}

	choices, err := h.store.Choices(ctx, question.ID)
	if err != nil {
		slog.Error("failed to query choices", "error", err, "question_id", question.ID)
		h.renderError(w, http.StatusInternalServerError, "")
		return models.Question{}, nil, false
	}

	return question, choices, true
}

// popMessages takes the pending flash messages out of the session and saves
// it. Must run before anything is written to w.
func (h *PollHandler) popMessages(w http.ResponseWriter, r *http.Request) ([]models.Message, bool) {
	s, err := h.sessions.Load(r.Context(), r)
	if err != nil {
		slog.Error("failed to load session", "error", err)
		h.renderError(w, http.StatusInternalServerError, "")
		return nil, false
	}

	messages := s.PopMessages()
	if err := h.sessions.Save(r.Context(), w, s); err != nil {
		// The page is still worth showing; the messages just show up again
		slog.Warn("failed to save session", "error", err)
	}
	return messages, true
}

func (h *PollHandler) render(w http.ResponseWriter, status int, name string, data any) {
	if err := templates.Render(w, status, name, data); err != nil {
		slog.Error("failed to render page", "error", err, "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *PollHandler) renderError(w http.ResponseWriter, status int, detail string) {
	h.render(w, status, templates.Error, templates.ErrorPage{
		Title:  http.StatusText(status),
		Detail: detail,
	})
}
