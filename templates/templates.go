// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/polls/models"
)

//go:embed html/*.html
var files embed.FS

// Page names
const (
	Index   = "index"
	Detail  = "detail"
	Results = "results"
	Error   = "error"
)

// IndexPage lists published questions
type IndexPage struct {
	Messages  []models.Message
	Questions []models.Question
	Query     string
	Page      int
	NumPages  int
	Now       time.Time // for the "new" marker
}

func (p IndexPage) HasPrev() bool { return p.Page > 1 }
func (p IndexPage) HasNext() bool { return p.Page < p.NumPages }
func (p IndexPage) PrevPage() int { return p.Page - 1 }
func (p IndexPage) NextPage() int { return p.Page + 1 }

// DetailPage is the voting form
type DetailPage struct {
	Messages     []models.Message
	Question     models.Question
	Choices      []models.Choice
	ErrorMessage string
}

// ResultsPage shows vote counts
type ResultsPage struct {
	Messages []models.Message
	Question models.Question
	Choices  []models.Choice
	Total    int64
}

// ErrorPage is shown for 404/405/500 responses
type ErrorPage struct {
	Messages []models.Message
	Title    string
	Detail   string
}

var funcs = template.FuncMap{
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"comma": func(n int64) string {
		return humanize.Comma(n)
	},
	"votes": func(n int64) string {
		return humanize.Comma(n) + " " + english.PluralWord(int(n), "vote", "")
	},
	"percent": func(n, total int64) string {
		if total == 0 {
			return "0%"
		}
		return humanize.FtoaWithDigits(float64(n)*100/float64(total), 1) + "%"
	},
}

var pages = mustParse(Index, Detail, Results, Error)

func mustParse(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(files, "html/base.html", "html/"+name+".html"))
	}
	return out
}

// Execute renders the named page into w.
func Execute(w io.Writer, name string, data any) error {
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// Render writes the named page as an HTML response. The page is rendered
// into a buffer first so a template error never produces half a page.
func Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := Execute(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
