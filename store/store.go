// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/polls/db"
	"github.com/danielhkuo/polls/models"
)

// ErrNotFound is returned when a question or choice does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// Filter narrows the published question listing.
type Filter struct {
	Query  string
	Now    time.Time
	Limit  int
	Offset int
}

// ChoiceFilter narrows the admin choice listing. Empty fields match everything.
type ChoiceFilter struct {
	QuestionID string
	Query      string
}

const questionColumns = `id, question_text, pub_date`
const choiceColumns = `id, question_id, choice_text, position, votes`

func scanQuestion(row interface{ Scan(...any) error }) (models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.QuestionText, &q.PubDate)
	return q, err
}

func scanChoice(row interface{ Scan(...any) error }) (models.Choice, error) {
	var c models.Choice
	err := row.Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.Position, &c.Votes)
	return c, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for use with
// ESCAPE '\'. Wildcards in the query match literally.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// placeholders returns "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(parts, ", ")
}

// PublishedQuestion returns the question if it exists and is published at now.
func (s *Store) PublishedQuestion(ctx context.Context, id string, now time.Time) (models.Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `
		SELECT `+questionColumns+`
		FROM question
		WHERE id = $1 AND pub_date <= $2
	`, id, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, ErrNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to query question: %w", err)
	}
	return q, nil
}

// ListPublished returns one page of published questions, newest first, and
// the total number of matches.
func (s *Store) ListPublished(ctx context.Context, f Filter) ([]models.Question, int, error) {
	where := `WHERE pub_date <= $1`
	args := []any{f.Now.UTC()}
	if f.Query != "" {
		where += ` AND (LOWER(question_text) LIKE $2 ESCAPE '\' OR LOWER(id) LIKE $2 ESCAPE '\')`
		args = append(args, likePattern(f.Query))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	n := len(args)
	query := `
		SELECT ` + questionColumns + `
		FROM question
		` + where + `
		ORDER BY pub_date DESC, id
		LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, f.Limit, f.Offset)

	questions, err := s.queryQuestions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// ListQuestions returns every question, published or not, newest first.
func (s *Store) ListQuestions(ctx context.Context, search string) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM question`
	var args []any
	if search != "" {
		query += ` WHERE LOWER(question_text) LIKE $1 ESCAPE '\'`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY pub_date DESC, id`
	return s.queryQuestions(ctx, query, args...)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return questions, nil
}

// Question returns a question regardless of its publication time.
func (s *Store) Question(ctx context.Context, id string) (models.Question, error) {
	return question(ctx, s.db, id)
}

func question(ctx context.Context, q db.DBTX, id string) (models.Question, error) {
	question, err := scanQuestion(q.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM question WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, ErrNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to query question: %w", err)
	}
	return question, nil
}

// CreateQuestion inserts a question together with its initial choices.
func (s *Store) CreateQuestion(ctx context.Context, text string, pubDate time.Time, choices []string) (models.QuestionWithChoices, error) {
	result := models.QuestionWithChoices{
		Question: models.Question{
			ID:           uuid.NewString(),
			QuestionText: text,
			PubDate:      pubDate.UTC(),
		},
		Choices: []models.Choice{},
	}

	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO question (id, question_text, pub_date)
			VALUES ($1, $2, $3)
		`, result.Question.ID, result.Question.QuestionText, result.Question.PubDate)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}

		for i, label := range choices {
			c, err := insertChoice(ctx, tx, result.Question.ID, label, i)
			if err != nil {
				return err
			}
			result.Choices = append(result.Choices, c)
		}
		return nil
	})
	if err != nil {
		return models.QuestionWithChoices{}, err
	}
	return result, nil
}

// UpdateQuestion changes the non-nil fields of a question.
func (s *Store) UpdateQuestion(ctx context.Context, id string, text *string, pubDate *time.Time) (models.Question, error) {
	var pub any
	if pubDate != nil {
		pub = pubDate.UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE question
		SET question_text = COALESCE($2, question_text),
		    pub_date = COALESCE($3, pub_date)
		WHERE id = $1
	`, id, text, pub)
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to update question: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Question{}, err
	}
	return s.Question(ctx, id)
}

// DeleteQuestion removes a question; its choices go with it.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return expectOneRow(res)
}

// Choices returns the choices of a question in display order.
func (s *Store) Choices(ctx context.Context, questionID string) ([]models.Choice, error) {
	return s.queryChoices(ctx, `
		SELECT `+choiceColumns+`
		FROM choice
		WHERE question_id = $1
		ORDER BY position, id
	`, questionID)
}

// ChoicesByIDs returns the choices among ids that belong to questionID.
// Unknown ids and ids of other questions are silently left out, so callers
// compare the result length with len(ids).
func (s *Store) ChoicesByIDs(ctx context.Context, questionID string, ids []string) ([]models.Choice, error) {
	if len(ids) == 0 {
		return []models.Choice{}, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, questionID)
	for _, id := range ids {
		args = append(args, id)
	}

	return s.queryChoices(ctx, `
		SELECT `+choiceColumns+`
		FROM choice
		WHERE question_id = $1 AND id IN (`+placeholders(2, len(ids))+`)
		ORDER BY position, id
	`, args...)
}

// ListChoices returns choices across questions for the admin listing.
func (s *Store) ListChoices(ctx context.Context, f ChoiceFilter) ([]models.Choice, error) {
	var conds []string
	var args []any
	if f.QuestionID != "" {
		args = append(args, f.QuestionID)
		conds = append(conds, "question_id = $"+strconv.Itoa(len(args)))
	}
	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		conds = append(conds, "LOWER(choice_text) LIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}

	query := `SELECT ` + choiceColumns + ` FROM choice`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY question_id, position, id`
	return s.queryChoices(ctx, query, args...)
}

func (s *Store) queryChoices(ctx context.Context, query string, args ...any) ([]models.Choice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		c, err := scanChoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read choices: %w", err)
	}
	return choices, nil
}

// Choice returns a single choice.
func (s *Store) Choice(ctx context.Context, id string) (models.Choice, error) {
	c, err := scanChoice(s.db.QueryRowContext(ctx, `
		SELECT `+choiceColumns+` FROM choice WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Choice{}, ErrNotFound
	}
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to query choice: %w", err)
	}
	return c, nil
}

// AddChoice appends a choice with zero votes to the end of a question's list.
func (s *Store) AddChoice(ctx context.Context, questionID, text string) (models.Choice, error) {
	var c models.Choice
	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if _, err := question(ctx, tx, questionID); err != nil {
			return err
		}

		var next int
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(position) + 1, 0) FROM choice WHERE question_id = $1
		`, questionID).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to query choice position: %w", err)
		}

		c, err = insertChoice(ctx, tx, questionID, text, next)
		return err
	})
	if err != nil {
		return models.Choice{}, err
	}
	return c, nil
}

func insertChoice(ctx context.Context, tx db.DBTX, questionID, text string, position int) (models.Choice, error) {
	c := models.Choice{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		ChoiceText: text,
		Position:   position,
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO choice (id, question_id, choice_text, position, votes)
		VALUES ($1, $2, $3, $4, 0)
	`, c.ID, c.QuestionID, c.ChoiceText, c.Position)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to insert choice: %w", err)
	}
	return c, nil
}

// UpdateChoice changes the non-nil fields of a choice. Vote counters are
// never touched here.
func (s *Store) UpdateChoice(ctx context.Context, id string, text *string, position *int) (models.Choice, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE choice
		SET choice_text = COALESCE($2, choice_text),
		    position = COALESCE($3, position)
		WHERE id = $1
	`, id, text, position)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to update choice: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Choice{}, err
	}
	return s.Choice(ctx, id)
}

func (s *Store) DeleteChoice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM choice WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete choice: %w", err)
	}
	return expectOneRow(res)
}

// IncrementVotes adds one vote to every listed choice of a question in a
// single transaction. The increment runs in the database, so concurrent
// calls never lose updates. If any choice is missing, or any statement
// fails, no counter changes.
func (s *Store) IncrementVotes(ctx context.Context, questionID string, choiceIDs []string) error {
	// Rows are locked in id order so concurrent votes over the same
	// choices cannot deadlock.
	ordered := slices.Sorted(slices.Values(choiceIDs))

	return db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		for _, id := range ordered {
			res, err := tx.ExecContext(ctx, `
				UPDATE choice SET votes = votes + 1
				WHERE id = $1 AND question_id = $2
			`, id, questionID)
			if err != nil {
				return fmt.Errorf("failed to increment votes for choice %s: %w", id, err)
			}
			if err := expectOneRow(res); err != nil {
				return fmt.Errorf("choice %s: %w", id, err)
			}
		}
		return nil
	})
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
