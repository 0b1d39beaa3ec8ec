package terminal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"solveit/internal/models"
	"solveit/internal/page"
	"solveit/internal/problems"
	"solveit/internal/render"
)

// printer serializes writes from the REPL and from message timers.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// messageDisplay prints board messages as they arrive. A dismissed message
// has already scrolled by, so ClearMessage only forgets it.
type messageDisplay struct {
	p       *printer
	showing bool
}

func (d *messageDisplay) ShowMessage(msg page.Message) {
	d.showing = true
	d.p.printf("[%s] %s\n", msg.Kind, msg.Text)
}

func (d *messageDisplay) ClearMessage() {
	d.showing = false
}

type problemsView struct {
	p *printer

	mu    sync.Mutex
	draft problems.Form
}

func (v *problemsView) ShowGreeting(text string) {
	v.p.printf("%s\n", text)
}

func (v *problemsView) RenderLoading() {
	v.p.printf("Loading problems...\n")
}

func (v *problemsView) RenderProblems(list []models.Problem) {
	if len(list) == 0 {
		v.p.printf("%s\n", render.EmptyState)
		return
	}
	var b strings.Builder
	for _, p := range list {
		fmt.Fprintf(&b, "[%s] %s  %s", p.ID, p.DisplayCategory(), render.FormatTimestamp(p.Timestamp))
		if p.Updated() {
			fmt.Fprintf(&b, " (Updated: %s)", render.FormatTimestamp(p.UpdatedAt))
		}
		fmt.Fprintf(&b, "\n  Problem:  %s\n  Solution: %s\n", p.Problem, p.Solution)
	}
	v.p.printf("%s", b.String())
}

func (v *problemsView) RenderLoadError(text string) {
	v.p.printf("%s\n", text)
}

func (v *problemsView) RenderSummary(summary problems.Summary, selected string) {
	v.p.printf("Total: %d  Categories: %d  This week: %d\n", summary.TotalProblems, summary.TotalCategories, summary.Recent)
	for _, opt := range summary.Categories {
		marker := " "
		if opt.Name == selected {
			marker = "*"
		}
		v.p.printf(" %s %s\n", marker, opt.Label())
	}
}

func (v *problemsView) RenderEditor(session problems.EditSession) {
	v.mu.Lock()
	if session.Inline() {
		v.draft = session.Draft
	}
	v.mu.Unlock()

	switch {
	case session.ModalOpen():
		v.p.printf("Editing %s (modal)\n", session.ID)
	case session.Inline():
		v.p.printf("%s %s\n", session.FormTitle(), session.ID)
	}
}

func (v *problemsView) ResetForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = problems.Form{}
}

// Draft is what the main form currently holds, used as prompt defaults.
func (v *problemsView) Draft() problems.Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

func (v *problemsView) keep(form problems.Form) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = form
}

type profileView struct {
	p *printer
}

func (v *profileView) RenderUser(user *models.User) {
	v.p.printf("Username:     %s\nEmail:        %s\nMember since: %s\n", user.Username, user.Email, render.FormatDate(user.CreatedAt))
}

func (v *profileView) RenderUserError(text string) {
	v.p.printf("%s\n", text)
}

func (v *profileView) ResetPasswordForm() {}

// fileDownloader writes exports into a directory on disk.
type fileDownloader struct {
	mu  sync.Mutex
	dir string
	p   *printer
}

func (d *fileDownloader) setDir(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dir = dir
}

func (d *fileDownloader) Download(filename, contentType string, data []byte) error {
	d.mu.Lock()
	dir := d.dir
	d.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	d.p.printf("Wrote %s (%s, %d bytes)\n", path, contentType, len(data))
	return nil
}
