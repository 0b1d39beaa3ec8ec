// Package render turns problem records and users into display text and markup.
//
// Markup is produced with html/template so every user-supplied field goes
// through contextual escaping; nothing here concatenates raw values into HTML.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"time"

	"solveit/internal/models"
)

const (
	timestampLayout = "Jan 2, 2006, 03:04 PM"
	dateLayout      = "January 2, 2006"
	exportDayLayout = "2006-01-02"

	EmptyState = "No problems found. Add your first problem above!"
)

// Escape converts text to markup-safe text.
func Escape(text string) string {
	return html.EscapeString(text)
}

func FormatTimestamp(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Time.Format(timestampLayout)
}

func FormatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Time.Format(dateLayout)
}

// ExportFilename names the export download after the current UTC date.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("problems_export_%s.json", now.UTC().Format(exportDayLayout))
}

func Welcome(user *models.User) string {
	return fmt.Sprintf("Welcome, %s!", user.Username)
}

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"stamp": FormatTimestamp,
	"date":  FormatDate,
}).Parse(`
{{define "problems"}}{{if not .}}<div class="empty-state show">` + EmptyState + `</div>{{else}}{{range .}}{{template "card" .}}{{end}}{{end}}{{end}}

{{define "card"}}
<div class="problem-card" data-id="{{.ID}}">
    <div class="problem-header">
        <div>
            <span class="category-badge">{{.DisplayCategory}}</span>
            <div class="problem-timestamp">
                {{stamp .Timestamp}}{{if .Updated}} (Updated: {{stamp .UpdatedAt}}){{end}}
            </div>
        </div>
        <div class="problem-actions">
            <button class="btn btn-edit" data-id="{{.ID}}">Edit</button>
            <button class="btn btn-danger btn-delete" data-id="{{.ID}}">Delete</button>
        </div>
    </div>
    <div class="problem-content">
        <h3>Problem</h3>
        <p>{{.Problem}}</p>
    </div>
    <div class="problem-content">
        <h3>Solution</h3>
        <p>{{.Solution}}</p>
    </div>
</div>
{{end}}

{{define "user"}}
<div class="user-detail-item">
    <span class="user-detail-label">Username:</span>
    <span class="user-detail-value">{{.Username}}</span>
</div>
<div class="user-detail-item">
    <span class="user-detail-label">Email:</span>
    <span class="user-detail-value">{{.Email}}</span>
</div>
<div class="user-detail-item">
    <span class="user-detail-label">Member Since:</span>
    <span class="user-detail-value">{{date .CreatedAt}}</span>
</div>
{{end}}
`))

// ProblemList renders the cards for an already sorted list, or the empty state.
func ProblemList(problems []models.Problem) (string, error) {
	return execute("problems", problems)
}

func ProblemCard(problem models.Problem) (string, error) {
	return execute("card", problem)
}

func UserDetails(user *models.User) (string, error) {
	return execute("user", user)
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
