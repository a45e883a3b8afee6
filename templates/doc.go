// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package templates renders the public HTML pages.

Pages are html/template files embedded from html/. Each page defines
"title" and "content" blocks and is combined with base.html, which also
prints pending flash messages.

	err := templates.Render(w, http.StatusOK, templates.Results, templates.ResultsPage{...})

# Helpers

Formatting helpers use go-humanize:

  - ago: relative time ("3 hours ago")
  - comma: thousands separators ("1,234")
  - votes: pluralised count ("1 vote", "2 votes")
  - percent: share of the total with one decimal
*/
package templates
