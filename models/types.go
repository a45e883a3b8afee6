package models

import "time"

// Flash message levels
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Domain types

type Question struct {
	ID           string    `json:"id"`
	QuestionText string    `json:"question_text"`
	PubDate      time.Time `json:"pub_date"`
}

// PublishedAt reports whether the question is visible and votable at now.
func (q Question) PublishedAt(now time.Time) bool {
	return !q.PubDate.After(now)
}

// WasPublishedRecently reports whether the question went public within the
// last day.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return q.PublishedAt(now) && now.Sub(q.PubDate) <= 24*time.Hour
}

type Choice struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	ChoiceText string `json:"choice_text"`
	Position   int    `json:"position"`
	Votes      int64  `json:"votes"`
}

type QuestionWithChoices struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
}

// TotalVotes sums the counters of all choices.
func (q QuestionWithChoices) TotalVotes() int64 {
	var total int64
	for _, c := range q.Choices {
		total += c.Votes
	}
	return total
}

// Message is a one-shot notice shown on the next rendered page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Admin request types

type CreateQuestionRequest struct {
	QuestionText string     `json:"question_text"`
	PubDate      *time.Time `json:"pub_date,omitempty"` // defaults to now
	Choices      []string   `json:"choices,omitempty"`
}

type UpdateQuestionRequest struct {
	QuestionText *string    `json:"question_text,omitempty"`
	PubDate      *time.Time `json:"pub_date,omitempty"`
}

type AddChoiceRequest struct {
	ChoiceText string `json:"choice_text"`
}

type UpdateChoiceRequest struct {
	ChoiceText *string `json:"choice_text,omitempty"`
	Position   *int    `json:"position,omitempty"`
}

// Admin response types

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
}

type ChoiceListResponse struct {
	Choices []Choice `json:"choices"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
