// Package problems drives the main page: listing, filtering and editing
// problem records.
package problems

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"solveit/internal/api"
	"solveit/internal/logger"
	"solveit/internal/models"
	"solveit/internal/page"
	"solveit/internal/render"
	"solveit/internal/validation"

	"github.com/sirupsen/logrus"
)

const (
	LoadErrorText      = "Failed to load problems. Please refresh the page."
	FillBothText       = "Please fill in both fields"
	SavedText          = "Problem saved successfully!"
	UpdatedText        = "Problem updated successfully!"
	SaveFailedText     = "Failed to save problem"
	UpdateFailedText   = "Failed to update problem"
	EditLoadFailedText = "Failed to load problem for editing"
	ConfirmDeleteText  = "Are you sure you want to delete this problem?"
	DeletedText        = "Problem deleted successfully"
	DeleteFailedText   = "Failed to delete problem"
	ExportedText       = "Problems exported successfully!"
	ExportFailedText   = "Failed to export problems"

	DefaultRecentWindow = 7 * 24 * time.Hour
)

var (
	// ErrNoModalTarget is returned when the modal is submitted with no record loaded into it.
	ErrNoModalTarget = errors.New("no problem loaded into the edit modal")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled by user")
)

var formRules = []validation.Rule{
	{Tag: "required", Message: FillBothText},
}

// Client is the part of the API the page uses.
type Client interface {
	page.LogoutClient
	CurrentUser(ctx context.Context) (*models.User, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	ListProblems(ctx context.Context) ([]models.Problem, error)
	GetProblem(ctx context.Context, id string) (*models.Problem, error)
	CreateProblem(ctx context.Context, in models.ProblemInput) (*models.Problem, error)
	UpdateProblem(ctx context.Context, id string, in models.ProblemInput) (*models.Problem, error)
	DeleteProblem(ctx context.Context, id string) error
	Export(ctx context.Context) ([]byte, string, error)
}

// View renders the page. Calls are made without the controller lock held.
type View interface {
	ShowGreeting(text string)
	RenderLoading()
	RenderProblems(problems []models.Problem)
	RenderLoadError(text string)
	RenderSummary(summary Summary, selectedCategory string)
	RenderEditor(session EditSession)
	ResetForm()
}

type Deps struct {
	Client       Client
	View         View
	Navigator    page.Navigator
	Notifier     page.Notifier
	Confirmer    page.Confirmer
	Downloader   page.Downloader
	Logger       *logger.Logger
	Now          func() time.Time
	RecentWindow time.Duration
}

type Controller struct {
	client       Client
	view         View
	nav          page.Navigator
	notify       page.Notifier
	confirm      page.Confirmer
	download     page.Downloader
	validator    *validation.Validator
	log          *logger.Logger
	now          func() time.Time
	recentWindow time.Duration

	mu    sync.Mutex
	state State
}

func NewController(deps Deps) *Controller {
	c := &Controller{
		client:       deps.Client,
		view:         deps.View,
		nav:          deps.Navigator,
		notify:       deps.Notifier,
		confirm:      deps.Confirmer,
		download:     deps.Downloader,
		validator:    validation.New(),
		log:          deps.Logger,
		now:          deps.Now,
		recentWindow: deps.RecentWindow,
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = c.log.Named("problems")
	if c.now == nil {
		c.now = time.Now
	}
	if c.recentWindow <= 0 {
		c.recentWindow = DefaultRecentWindow
	}
	return c
}

// State returns a copy of the current page state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Init runs the page-load sequence: greeting, list, statistics.
func (c *Controller) Init(ctx context.Context) error {
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			c.nav.Navigate(page.LoginPath)
			return err
		}
		c.log.Component(nil).WithError(err).Error("failed to load user info")
	} else {
		c.view.ShowGreeting(render.Welcome(user))
	}

	c.view.RenderEditor(c.State().Edit)
	return c.Refresh(ctx)
}

// Refresh reloads the list and then the statistics.
// Statistics load even when the list fails, unless the session is gone.
func (c *Controller) Refresh(ctx context.Context) error {
	loadErr := c.Load(ctx)
	if api.IsUnauthorized(loadErr) {
		return loadErr
	}
	statsErr := c.LoadStatistics(ctx)
	if loadErr != nil {
		return loadErr
	}
	return statsErr
}

// Load replaces the snapshot with the server's list and re-renders it.
func (c *Controller) Load(ctx context.Context) error {
	c.view.RenderLoading()

	problems, err := c.client.ListProblems(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			c.nav.Navigate(page.LoginPath)
			return err
		}
		c.mu.Lock()
		c.state.Snapshot = nil
		c.state.Loaded = false
		c.mu.Unlock()

		c.log.Component(nil).WithError(err).Error("failed to load problems")
		c.view.RenderLoadError(LoadErrorText)
		return err
	}

	c.mu.Lock()
	c.state = State{
		Snapshot: problems,
		Edit:     c.state.Edit,
		Filter:   c.state.Filter,
		Loaded:   true,
	}
	view := Apply(c.state.Snapshot, c.state.Filter)
	c.mu.Unlock()

	c.view.RenderProblems(view)
	return nil
}

// LoadStatistics renders totals, categories and the recent count.
func (c *Controller) LoadStatistics(ctx context.Context) error {
	stats, err := c.client.Statistics(ctx)
	if err != nil {
		c.log.Component(nil).WithError(err).Error("failed to load statistics")
		return err
	}

	c.mu.Lock()
	snapshot := append([]models.Problem(nil), c.state.Snapshot...)
	selected := c.state.Filter.Category
	c.mu.Unlock()

	if len(snapshot) == 0 {
		fetched, err := c.client.ListProblems(ctx)
		if err != nil {
			c.log.Component(nil).WithError(err).Debug("recent count falls back to empty list")
		}
		snapshot = fetched
	}

	summary := Summary{
		TotalProblems:   stats.TotalProblems,
		TotalCategories: stats.TotalCategories,
		Recent:          CountRecent(snapshot, c.now().Add(-c.recentWindow)),
		Categories:      CategoryOptions(stats.Categories),
	}
	c.view.RenderSummary(summary, selected)
	return nil
}

// SetFilter changes the active filter and re-renders from the snapshot.
func (c *Controller) SetFilter(f Filter) {
	c.mu.Lock()
	c.state.Filter = f
	view := Apply(c.state.Snapshot, f)
	c.mu.Unlock()

	c.view.RenderProblems(view)
}

// Submit saves the main form: an update when the form is in inline edit
// mode, a create otherwise.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	in := form.input()
	if err := c.validate(in); err != nil {
		return err
	}

	c.mu.Lock()
	session := c.state.Edit
	c.mu.Unlock()

	var err error
	if session.Inline() {
		_, err = c.client.UpdateProblem(ctx, session.ID, in.body())
	} else {
		_, err = c.client.CreateProblem(ctx, in.body())
	}
	if err != nil {
		return c.fail(err, SaveFailedText, "failed to save problem", logrus.Fields{"edit": session.Source.String(), "id": session.ID})
	}

	if session.Inline() {
		c.notify.Notify(page.Success(UpdatedText))
		c.CancelEdit()
	} else {
		c.notify.Notify(page.Success(SavedText))
		c.view.ResetForm()
	}
	return c.Refresh(ctx)
}

// OpenModal fetches one record and loads it into the edit modal.
func (c *Controller) OpenModal(ctx context.Context, id string) error {
	problem, err := c.client.GetProblem(ctx, id)
	if err != nil {
		if api.IsUnauthorized(err) {
			c.nav.Navigate(page.LoginPath)
			return err
		}
		c.log.Component(logrus.Fields{"id": id}).WithError(err).Error("failed to load problem for editing")
		c.notify.Notify(page.Error(EditLoadFailedText))
		return err
	}

	session := sessionFor(EditModal, *problem)
	c.setSession(session)
	return nil
}

// SubmitModal saves the modal form. It never creates.
func (c *Controller) SubmitModal(ctx context.Context, form Form) error {
	c.mu.Lock()
	session := c.state.Edit
	c.mu.Unlock()
	if !session.ModalOpen() {
		return ErrNoModalTarget
	}

	in := form.input()
	if err := c.validate(in); err != nil {
		return err
	}

	if _, err := c.client.UpdateProblem(ctx, session.ID, in.body()); err != nil {
		return c.fail(err, UpdateFailedText, "failed to update problem", logrus.Fields{"edit": session.Source.String(), "id": session.ID})
	}

	c.notify.Notify(page.Success(UpdatedText))
	c.CloseModal()
	return c.Refresh(ctx)
}

// CloseModal discards the modal session; an inline session is left alone.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	if !c.state.Edit.ModalOpen() {
		c.mu.Unlock()
		return
	}
	c.state.Edit = EditSession{}
	c.mu.Unlock()

	c.view.RenderEditor(EditSession{})
}

// StartInlineEdit copies a loaded record into the main form. It makes no
// request; an id missing from the snapshot is ignored.
func (c *Controller) StartInlineEdit(id string) bool {
	c.mu.Lock()
	problem, ok := c.state.find(id)
	c.mu.Unlock()
	if !ok {
		return false
	}

	c.setSession(sessionFor(EditInline, problem))
	return true
}

// CancelEdit ends any edit session and resets the main form.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.state.Edit = EditSession{}
	c.mu.Unlock()

	c.view.ResetForm()
	c.view.RenderEditor(EditSession{})
}

// Delete removes a record after the user confirms.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if !c.confirm.Confirm(ConfirmDeleteText) {
		return ErrCancelled
	}

	if err := c.client.DeleteProblem(ctx, id); err != nil {
		if api.IsUnauthorized(err) {
			c.nav.Navigate(page.LoginPath)
			return err
		}
		c.log.Component(logrus.Fields{"id": id}).WithError(err).Error("failed to delete problem")
		if api.IsNetwork(err) {
			c.notify.Notify(page.Error(page.NetworkErrorText))
		} else {
			c.notify.Notify(page.Error(DeleteFailedText))
		}
		return err
	}

	c.mu.Lock()
	deletedTarget := c.state.Edit.Active() && c.state.Edit.ID == id
	c.mu.Unlock()
	if deletedTarget {
		c.CancelEdit()
	}

	c.notify.Notify(page.Success(DeletedText))
	return c.Refresh(ctx)
}

// Export downloads the server's export payload as-is.
func (c *Controller) Export(ctx context.Context) error {
	data, contentType, err := c.client.Export(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			c.nav.Navigate(page.LoginPath)
			return err
		}
		c.log.Component(nil).WithError(err).Error("failed to export problems")
		c.notify.Notify(page.Error(ExportFailedText))
		return err
	}

	filename := render.ExportFilename(c.now())
	if err := c.download.Download(filename, contentType, data); err != nil {
		c.log.Component(logrus.Fields{"filename": filename}).WithError(err).Error("failed to save export")
		c.notify.Notify(page.Error(ExportFailedText))
		return fmt.Errorf("failed to save export: %w", err)
	}

	c.notify.Notify(page.Success(ExportedText))
	return nil
}

func (c *Controller) Logout(ctx context.Context) {
	page.Logout(ctx, c.client, c.nav, c.log)
}

// setSession replaces the edit session. A main form leaving edit mode is
// emptied so it cannot save the old record's text as a new one.
func (c *Controller) setSession(session EditSession) {
	c.mu.Lock()
	prev := c.state.Edit
	c.state.Edit = session
	c.mu.Unlock()

	if prev.Inline() && !session.Inline() {
		c.view.ResetForm()
	}
	c.view.RenderEditor(session)
}

func (c *Controller) validate(in formInput) error {
	err := c.validator.Validate(in, formRules...)
	if err == nil {
		return nil
	}
	if msg, ok := validation.Message(err); ok {
		c.notify.Notify(page.Error(msg))
	}
	return err
}

// fail reports a failed write: 401 leaves the page, anything else is shown inline.
func (c *Controller) fail(err error, fallback, logMsg string, fields logrus.Fields) error {
	if api.IsUnauthorized(err) {
		c.nav.Navigate(page.LoginPath)
		return err
	}
	c.log.Component(fields).WithError(err).Error(logMsg)
	if api.IsNetwork(err) {
		c.notify.Notify(page.Error(page.NetworkErrorText))
		return err
	}
	c.notify.Notify(page.Error(api.ServerMessage(err, fallback)))
	return err
}
