//go:build js && wasm

package main

import (
	"strconv"
	"syscall/js"

	"solveit/internal/logger"
	"solveit/internal/models"
	"solveit/internal/problems"
	"solveit/internal/render"
)

type problemsView struct {
	log *logger.Logger
}

func (v *problemsView) ShowGreeting(text string) {
	setText("usernameDisplay", text)
}

func (v *problemsView) RenderLoading() {
	v.setContainer(`<div class="loading">Loading problems...</div>`)
}

func (v *problemsView) RenderProblems(list []models.Problem) {
	markup, err := render.ProblemList(list)
	if err != nil {
		v.log.Component(nil).WithError(err).Error("failed to render problems")
		return
	}
	v.setContainer(markup)
}

func (v *problemsView) RenderLoadError(text string) {
	v.setContainer(`<div class="error-message">` + render.Escape(text) + `</div>`)
}

func (v *problemsView) RenderSummary(summary problems.Summary, selected string) {
	setText("totalProblems", strconv.Itoa(summary.TotalProblems))
	setText("totalCategories", strconv.Itoa(summary.TotalCategories))
	setText("recentProblems", strconv.Itoa(summary.Recent))

	filter := byID("categoryFilter")
	if !present(filter) {
		return
	}
	filter.Set("innerHTML", `<option value="">All Categories</option>`)
	for _, opt := range summary.Categories {
		el := document.Call("createElement", "option")
		el.Set("value", opt.Name)
		el.Set("textContent", opt.Label())
		filter.Call("appendChild", el)
	}
	filter.Set("value", selected)
}

func (v *problemsView) RenderEditor(session problems.EditSession) {
	modal := byID("editModal")
	if session.ModalOpen() {
		setValue("editProblemId", session.ID)
		setValue("editCategory", session.Draft.Category)
		setValue("editProblem", session.Draft.Problem)
		setValue("editSolution", session.Draft.Solution)
		if present(modal) {
			modal.Get("classList").Call("add", "show")
		}
	} else if present(modal) && modal.Get("classList").Call("contains", "show").Bool() {
		modal.Get("classList").Call("remove", "show")
		if form := byID("editForm"); present(form) {
			form.Call("reset")
		}
	}

	if session.Inline() {
		setValue("problemId", session.ID)
		setValue("category", session.Draft.Category)
		setValue("problem", session.Draft.Problem)
		setValue("solution", session.Draft.Solution)
	} else {
		setValue("problemId", "")
	}
	setText("formTitle", session.FormTitle())
	setText("submitBtn", session.SubmitLabel())
	if btn := byID("cancelEditBtn"); present(btn) {
		display := "none"
		if session.Inline() {
			display = "block"
		}
		btn.Get("style").Set("display", display)
	}
	if session.Inline() {
		if form := document.Call("querySelector", ".problem-form"); present(form) {
			form.Call("scrollIntoView", map[string]interface{}{"behavior": "smooth"})
		}
	}
}

func (v *problemsView) ResetForm() {
	if form := byID("problemForm"); present(form) {
		form.Call("reset")
	}
}

func (v *problemsView) setContainer(markup string) {
	if el := byID("problemsContainer"); present(el) {
		el.Set("innerHTML", markup)
	}
}

type profileView struct {
	log *logger.Logger
}

func (v *profileView) RenderUser(user *models.User) {
	markup, err := render.UserDetails(user)
	if err != nil {
		v.log.Component(nil).WithError(err).Error("failed to render user")
		return
	}
	if el := byID("userInfo"); present(el) {
		el.Set("innerHTML", markup)
	}
}

func (v *profileView) RenderUserError(text string) {
	if el := byID("userInfo"); present(el) {
		el.Set("innerHTML", `<div class="error-message">`+render.Escape(text)+`</div>`)
	}
}

func (v *profileView) ResetPasswordForm() {
	if form := byID("passwordForm"); present(form) {
		form.Call("reset")
	}
}

// cardAction finds the data-id of the card button or card that received a click.
func cardAction(target js.Value, selector string) (string, bool) {
	if !present(target) {
		return "", false
	}
	el := target.Call("closest", selector)
	if !present(el) {
		return "", false
	}
	id := el.Get("dataset").Get("id")
	if !present(id) {
		return "", false
	}
	return id.String(), true
}
