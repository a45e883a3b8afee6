// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request and response types.

# Domain Types

  - Question: poll prompt with a publication time. Only questions whose
    PubDate is at or before now are listed, shown or votable.
  - Choice: option under a question carrying a vote counter. The counter is
    changed only by the atomic increment in the store.
  - QuestionWithChoices: a question and its choices in display order.
  - Message: flash message rendered once on the next page.

# Request Types

Admin API JSON bodies:

  - CreateQuestionRequest: question_text, pub_date (optional), choices (optional)
  - UpdateQuestionRequest: question_text, pub_date (both optional)
  - AddChoiceRequest: choice_text
  - UpdateChoiceRequest: choice_text, position (both optional)

# Response Types

  - QuestionListResponse, ChoiceListResponse
  - ErrorResponse: error, message

# Constants

Message levels:

	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
*/
package models
