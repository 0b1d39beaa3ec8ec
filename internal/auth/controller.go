// Package auth handles the login and signup forms.
package auth

import (
	"context"
	"strings"

	"solveit/internal/api"
	"solveit/internal/logger"
	"solveit/internal/models"
	"solveit/internal/page"
	"solveit/internal/validation"
)

const (
	FillAllText       = "Please fill in all fields"
	ShortPasswordText = "Password must be at least 6 characters"
	LoginFailedText   = "Login failed"
	SignupFailedText  = "Signup failed"

	MinPasswordLength = 6
)

type Client interface {
	Login(ctx context.Context, creds models.Credentials) error
	Signup(ctx context.Context, reg models.Registration) error
}

type LoginForm struct {
	Username string
	Password string
}

type SignupForm struct {
	Username string
	Email    string
	Password string
}

type loginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type signupInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

var rules = []validation.Rule{
	{Tag: "required", Message: FillAllText},
	{Tag: "min", Message: ShortPasswordText},
}

type Controller struct {
	client    Client
	nav       page.Navigator
	notify    page.Notifier
	validator *validation.Validator
	log       *logger.Logger
}

func NewController(client Client, nav page.Navigator, notify page.Notifier, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		client:    client,
		nav:       nav,
		notify:    notify,
		validator: validation.New(),
		log:       log.Named("auth"),
	}
}

func (c *Controller) Login(ctx context.Context, form LoginForm) error {
	in := loginInput{Username: strings.TrimSpace(form.Username), Password: form.Password}
	if err := c.validate(in); err != nil {
		return err
	}

	err := c.client.Login(ctx, models.Credentials{Username: in.Username, Password: in.Password})
	return c.finish(err, LoginFailedText)
}

func (c *Controller) Signup(ctx context.Context, form SignupForm) error {
	in := signupInput{
		Username: strings.TrimSpace(form.Username),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	}
	if err := c.validate(in); err != nil {
		return err
	}

	err := c.client.Signup(ctx, models.Registration{Username: in.Username, Email: in.Email, Password: in.Password})
	return c.finish(err, SignupFailedText)
}

func (c *Controller) finish(err error, fallback string) error {
	if err == nil {
		c.nav.Navigate(page.HomePath)
		return nil
	}

	c.log.Component(nil).WithError(err).Warn(strings.ToLower(fallback))
	if api.IsNetwork(err) {
		c.notify.Notify(page.Error(page.NetworkErrorText))
	} else {
		c.notify.Notify(page.Error(api.ServerMessage(err, fallback)))
	}
	return err
}

func (c *Controller) validate(form interface{}) error {
	err := c.validator.Validate(form, rules...)
	if msg, ok := validation.Message(err); ok {
		c.notify.Notify(page.Error(msg))
	}
	return err
}
