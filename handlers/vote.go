// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/session"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/templates"
)

// User-facing vote messages
const (
	msgVoted          = "Thanks for voting!"
	msgVotedMany      = "Thanks for voting! You selected %d choices."
	msgAlreadyVoted   = "You have already voted on this question."
	msgInvalidChoices = "You didn't select any valid choices."
)

type voteOutcome int

const (
	voteRecorded voteOutcome = iota
	voteDuplicate
	voteInvalid
)

// voteResult is what castVote decided. record is the vote record to store
// back into the session; it only differs from the input on voteRecorded.
type voteResult struct {
	outcome  voteOutcome
	selected int
	record   session.VoteRecord
}

// castVote applies one submission for a published question. voted is the
// session's vote record at entry. Expected conditions (duplicate vote, bad
// selection) come back as outcomes; the error is reserved for storage
// failures, in which case no counter has changed.
func (h *PollHandler) castVote(ctx context.Context, question models.Question, choiceIDs []string, voted session.VoteRecord) (voteResult, error) {
	if voted.Has(question.ID) {
		return voteResult{outcome: voteDuplicate, record: voted}, nil
	}

	invalid := voteResult{outcome: voteInvalid, record: voted}
	if len(choiceIDs) == 0 {
		return invalid, nil
	}

	// Every submitted id must be a distinct choice of this question
	matched, err := h.store.ChoicesByIDs(ctx, question.ID, choiceIDs)
	if err != nil {
		return voteResult{}, err
	}
	if len(matched) != len(choiceIDs) {
		return invalid, nil
	}

	err = h.store.IncrementVotes(ctx, question.ID, choiceIDs)
	if errors.Is(err, store.ErrNotFound) {
		// A choice was deleted after validation; the transaction rolled back
		return invalid, nil
	}
	if err != nil {
		return voteResult{}, err
	}

	return voteResult{
		outcome:  voteRecorded,
		selected: len(choiceIDs),
		record:   voted.With(question.ID),
	}, nil
}

func successMessage(selected int) string {
	if selected > 1 {
		return fmt.Sprintf(msgVotedMany, selected)
	}
	return msgVoted
}

// Vote handles POST /polls/{id}/vote
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.renderError(w, http.StatusMethodNotAllowed, "Votes must be submitted with POST.")
		return
	}

	ctx := r.Context()

	question, err := h.store.PublishedQuestion(ctx, r.PathValue("id"), h.now())
	if errors.Is(err, store.ErrNotFound) {
		h.renderError(w, http.StatusNotFound, "No poll matches the given query.")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", r.PathValue("id"))
		h.renderError(w, http.StatusInternalServerError, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderError(w, http.StatusBadRequest, "Malformed form data.")
		return
	}

	s, err := h.sessions.Load(ctx, r)
	if err != nil {
		slog.Error("failed to load session", "error", err)
		h.renderError(w, http.StatusInternalServerError, "")
		return
	}

	result, err := h.castVote(ctx, question, r.PostForm["choice"], s.VoteRecord())
	if err != nil {
		slog.Error("failed to record vote", "error", err, "question_id", question.ID)
		h.renderError(w, http.StatusInternalServerError, "")
		return
	}

	switch result.outcome {
	case voteInvalid:
		choices, err := h.store.Choices(ctx, question.ID)
		if err != nil {
			slog.Error("failed to query choices", "error", err, "question_id", question.ID)
			h.renderError(w, http.StatusInternalServerError, "")
			return
		}

		// The error goes out with this response; Save only writes when
		// pending messages were popped
		messages := append(s.PopMessages(), models.Message{Level: models.LevelError, Text: msgInvalidChoices})
		if err := h.sessions.Save(ctx, w, s); err != nil {
			slog.Warn("failed to save session", "error", err)
		}

		h.render(w, http.StatusOK, templates.Detail, templates.DetailPage{
			Messages:     messages,
			Question:     question,
			Choices:      choices,
			ErrorMessage: msgInvalidChoices,
		})
		return

	case voteDuplicate:
		s.AddMessage(models.LevelWarning, msgAlreadyVoted)

	case voteRecorded:
		s.SetVoteRecord(result.record)
		s.AddMessage(models.LevelSuccess, successMessage(result.selected))
		slog.Info("vote recorded",
			"question_id", question.ID,
			"choices", result.selected,
			"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKey),
		)
	}

	if err := h.sessions.Save(ctx, w, s); err != nil {
		// The counters are already committed, so still send the voter on
		slog.Error("failed to save session", "error", err, "question_id", question.ID)
	}

	http.Redirect(w, r, "/polls/"+question.ID+"/results", http.StatusSeeOther)
}
