// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/models"
)

// VoteRecord lists the questions a browser session has voted on, in the
// order the votes were cast.
type VoteRecord []string

// Has reports whether questionID is in the record.
func (v VoteRecord) Has(questionID string) bool {
	return slices.Contains(v, questionID)
}

// With returns a record that includes questionID. The receiver is not
// modified.
func (v VoteRecord) With(questionID string) VoteRecord {
	if v.Has(questionID) {
		return v
	}
	out := make(VoteRecord, len(v), len(v)+1)
	copy(out, v)
	return append(out, questionID)
}

// data is the JSON document persisted per session
type data struct {
	VotedQuestions VoteRecord       `json:"voted_questions"`
	Messages       []models.Message `json:"messages,omitempty"`
}

type Session struct {
	key      string
	data     data
	isNew    bool
	modified bool
}

// Key returns the session key, empty for a session that was never saved.
func (s *Session) Key() string {
	return s.key
}

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool {
	return s.isNew
}

// VoteRecord returns a copy of the questions voted on in this session.
func (s *Session) VoteRecord() VoteRecord {
	return slices.Clone(s.data.VotedQuestions)
}

// SetVoteRecord replaces the stored vote record.
func (s *Session) SetVoteRecord(v VoteRecord) {
	s.data.VotedQuestions = slices.Clone(v)
	s.modified = true
}

// AddMessage queues a flash message for the next rendered page.
func (s *Session) AddMessage(level, text string) {
	s.data.Messages = append(s.data.Messages, models.Message{Level: level, Text: text})
	s.modified = true
}

// PopMessages returns and clears the queued flash messages.
func (s *Session) PopMessages() []models.Message {
	msgs := s.data.Messages
	if len(msgs) > 0 {
		s.data.Messages = nil
		s.modified = true
	}
	return msgs
}

// Modified reports whether Save has anything to write.
func (s *Session) Modified() bool {
	return s.modified
}

type Store struct {
	db         *sql.DB
	cookieName string
	ttl        time.Duration
	now        func() time.Time
}

func NewStore(db *sql.DB, cfg cliparse.Config) *Store {
	return &Store{
		db:         db,
		cookieName: cfg.SessionCookieName,
		ttl:        cfg.SessionTTL,
		now:        time.Now,
	}
}

// Load returns the session named by the request cookie. A missing, unknown
// or expired session yields a fresh empty one; only database failures are
// errors.
func (st *Store) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(st.cookieName)
	if err != nil || cookie.Value == "" {
		return newSession(), nil
	}

	var raw string
	err = st.db.QueryRowContext(ctx, `
		SELECT data FROM web_session
		WHERE session_key = $1 AND expires_at > $2
	`, cookie.Value, st.now().UTC()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return newSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := &Session{key: cookie.Value}
	if err := json.Unmarshal([]byte(raw), &s.data); err != nil {
		// Corrupt data is dropped rather than failing every request
		return newSession(), nil
	}
	return s, nil
}

func newSession() *Session {
	return &Session{isNew: true}
}

// Save persists a modified session, extends its expiry and sets the cookie.
// Unmodified sessions are left alone.
func (st *Store) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.modified {
		return nil
	}

	if s.key == "" {
		key, err := auth.GenerateSessionKey()
		if err != nil {
			return err
		}
		s.key = key
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	expires := st.now().UTC().Add(st.ttl)
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO web_session (session_key, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_key) DO UPDATE
		SET data = excluded.data, expires_at = excluded.expires_at
	`, s.key, string(raw), expires)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     st.cookieName,
		Value:    s.key,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.isNew = false
	s.modified = false
	return nil
}

// PurgeExpired deletes sessions past their expiry and returns how many were removed.
func (st *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM web_session WHERE expires_at <= $1`, st.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purged rows: %w", err)
	}
	return n, nil
}
