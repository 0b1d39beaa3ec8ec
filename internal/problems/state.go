package problems

import (
	"strings"

	"solveit/internal/models"
)

type EditSource int

const (
	EditNone EditSource = iota
	EditInline
	EditModal
)

func (s EditSource) String() string {
	switch s {
	case EditInline:
		return "inline"
	case EditModal:
		return "modal"
	default:
		return "none"
	}
}

// EditSession is the one record being edited, and which editor holds it.
// Starting an edit from either editor replaces the previous session.
type EditSession struct {
	Source EditSource
	ID     string
	Draft  Form
}

func (s EditSession) Active() bool {
	return s.Source != EditNone
}

// Inline reports whether the main form is in edit mode.
func (s EditSession) Inline() bool {
	return s.Source == EditInline
}

func (s EditSession) ModalOpen() bool {
	return s.Source == EditModal
}

func (s EditSession) FormTitle() string {
	if s.Inline() {
		return "Edit Problem"
	}
	return "Add New Problem"
}

func (s EditSession) SubmitLabel() string {
	if s.Inline() {
		return "Update Problem"
	}
	return "Save Problem"
}

func sessionFor(source EditSource, p models.Problem) EditSession {
	return EditSession{
		Source: source,
		ID:     p.ID,
		Draft: Form{
			Problem:  p.Problem,
			Solution: p.Solution,
			Category: p.DisplayCategory(),
		},
	}
}

// Form is what the user typed into either editor.
type Form struct {
	Problem  string
	Solution string
	Category string
}

type formInput struct {
	Problem  string `validate:"required"`
	Solution string `validate:"required"`
	Category string
}

func (f Form) input() formInput {
	return formInput{
		Problem:  strings.TrimSpace(f.Problem),
		Solution: strings.TrimSpace(f.Solution),
		Category: f.Category,
	}
}

func (in formInput) body() models.ProblemInput {
	return models.ProblemInput{Problem: in.Problem, Solution: in.Solution, Category: in.Category}
}

// Filter narrows the displayed list. Empty fields do not filter.
type Filter struct {
	Search   string
	Category string
}

// State is the page's application state: created on page load, snapshot
// replaced wholesale by each successful reload.
type State struct {
	Snapshot []models.Problem
	Edit     EditSession
	Filter   Filter
	Loaded   bool
}

func (s State) clone() State {
	out := s
	out.Snapshot = append([]models.Problem(nil), s.Snapshot...)
	return out
}

func (s State) find(id string) (models.Problem, bool) {
	for _, p := range s.Snapshot {
		if p.ID == id {
			return p, true
		}
	}
	return models.Problem{}, false
}
