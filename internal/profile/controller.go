// Package profile drives the profile page: account details and password change.
package profile

import (
	"context"

	"solveit/internal/api"
	"solveit/internal/logger"
	"solveit/internal/models"
	"solveit/internal/page"
	"solveit/internal/validation"
)

const (
	LoadFailedText    = "Failed to load user information."
	FillAllText       = "Please fill in all fields"
	ShortPasswordText = "New password must be at least 6 characters"
	MismatchText      = "New passwords do not match"
	ChangedText       = "Password changed successfully!"
	ChangeFailedText  = "Failed to change password"
)

type Client interface {
	page.LogoutClient
	CurrentUser(ctx context.Context) (*models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error
}

type View interface {
	RenderUser(user *models.User)
	RenderUserError(text string)
	ResetPasswordForm()
}

type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

type passwordInput struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=6"`
	Confirm string `validate:"required,eqfield=New"`
}

var passwordRules = []validation.Rule{
	{Tag: "required", Message: FillAllText},
	{Tag: "min", Message: ShortPasswordText},
	{Tag: "eqfield", Message: MismatchText},
}

type Controller struct {
	client    Client
	view      View
	nav       page.Navigator
	notify    page.Notifier
	validator *validation.Validator
	log       *logger.Logger
}

func NewController(client Client, view View, nav page.Navigator, notify page.Notifier, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		client:    client,
		view:      view,
		nav:       nav,
		notify:    notify,
		validator: validation.New(),
		log:       log.Named("profile"),
	}
}

// Init loads and shows the current user.
func (c *Controller) Init(ctx context.Context) error {
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			c.nav.Navigate(page.LoginPath)
			return err
		}
		c.log.Component(nil).WithError(err).Error("failed to load user info")
		c.view.RenderUserError(LoadFailedText)
		return err
	}

	c.view.RenderUser(user)
	return nil
}

// ChangePassword validates and submits the form. The session stays open.
func (c *Controller) ChangePassword(ctx context.Context, form PasswordForm) error {
	in := passwordInput{Current: form.Current, New: form.New, Confirm: form.Confirm}
	if err := c.validator.Validate(in, passwordRules...); err != nil {
		if msg, ok := validation.Message(err); ok {
			c.notify.Notify(page.Error(msg))
		}
		return err
	}

	err := c.client.ChangePassword(ctx, models.PasswordChange{CurrentPassword: in.Current, NewPassword: in.New})
	if err != nil {
		c.log.Component(nil).WithError(err).Warn("failed to change password")
		if api.IsNetwork(err) {
			c.notify.Notify(page.Error(page.NetworkErrorText))
		} else {
			c.notify.Notify(page.Error(api.ServerMessage(err, ChangeFailedText)))
		}
		return err
	}

	c.notify.Notify(page.Success(ChangedText))
	c.view.ResetPasswordForm()
	return nil
}

func (c *Controller) Logout(ctx context.Context) {
	page.Logout(ctx, c.client, c.nav, c.log)
}
