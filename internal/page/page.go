// Package page holds what the page controllers share: navigation, the
// transient message board and logout.
package page

import (
	"context"
)

const (
	HomePath  = "/"
	LoginPath = "/login"

	NetworkErrorText = "Network error. Please try again."
)

type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

type Message struct {
	Kind Kind
	Text string
}

func Error(text string) Message {
	return Message{Kind: KindError, Text: text}
}

func Success(text string) Message {
	return Message{Kind: KindSuccess, Text: text}
}

// Navigator leaves the current page.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(msg Message)
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Downloader hands a payload to the user as a file.
type Downloader interface {
	Download(filename, contentType string, data []byte) error
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// LogoutClient is the slice of the API client Logout needs.
type LogoutClient interface {
	Logout(ctx context.Context) error
}
