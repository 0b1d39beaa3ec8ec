// Package terminal binds the page controllers to a line-oriented REPL.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"solveit/internal/auth"
	"solveit/internal/logger"
	"solveit/internal/page"
	"solveit/internal/problems"
	"solveit/internal/profile"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

const profilePath = "/profile"

// ErrExit is returned by Exec when the user asks to leave.
var ErrExit = errors.New("exit requested")

// LineReader is the subset of *readline.Instance the session uses.
type LineReader interface {
	Readline() (string, error)
	ReadlineWithDefault(what string) (string, error)
	ReadPassword(prompt string) ([]byte, error)
	SetPrompt(prompt string)
}

// Client is everything the three controllers need from the API.
type Client interface {
	auth.Client
	problems.Client
	profile.Client
}

type Options struct {
	Client         Client
	Reader         LineReader
	Output         io.Writer
	Logger         *logger.Logger
	ExportDir      string
	MessageTimeout time.Duration
	RecentWindow   time.Duration
}

type Session struct {
	rl  LineReader
	out *printer

	board    *page.Board
	problems *problems.Controller
	auth     *auth.Controller
	profile  *profile.Controller
	view     *problemsView
	download *fileDownloader
	exportTo string

	page    string
	pending string
}

func New(opts Options) *Session {
	out := &printer{out: opts.Output}
	s := &Session{
		rl:       opts.Reader,
		out:      out,
		view:     &problemsView{p: out},
		download: &fileDownloader{dir: opts.ExportDir, p: out},
		exportTo: opts.ExportDir,
	}
	s.board = page.NewBoard(&messageDisplay{p: out}, opts.MessageTimeout)

	s.problems = problems.NewController(problems.Deps{
		Client:       opts.Client,
		View:         s.view,
		Navigator:    s,
		Notifier:     s.board,
		Confirmer:    page.ConfirmerFunc(s.confirm),
		Downloader:   s.download,
		Logger:       opts.Logger,
		RecentWindow: opts.RecentWindow,
	})
	s.auth = auth.NewController(opts.Client, s, s.board, opts.Logger)
	s.profile = profile.NewController(opts.Client, &profileView{p: out}, s, s.board, opts.Logger)
	return s
}

// Navigate records the destination; the REPL enters it after the current command.
func (s *Session) Navigate(path string) {
	s.pending = path
}

// Page is the page the session is on.
func (s *Session) Page() string {
	return s.page
}

// Start enters the problems page, which falls back to login without a session.
func (s *Session) Start(ctx context.Context) {
	s.Navigate(page.HomePath)
	s.follow(ctx)
}

func (s *Session) Run(ctx context.Context) error {
	s.Start(ctx)
	for {
		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.out.printf("Use 'exit' to quit.\n")
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			s.out.printf("error: %v\n", err)
		}
	}
}

// Exec runs one command line and then follows any navigation it caused.
func (s *Session) Exec(ctx context.Context, line string) error {
	args, err := shlex.Split(strings.TrimSpace(line))
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	err = s.dispatch(ctx, args[0], args[1:])
	s.follow(ctx)
	return err
}

func (s *Session) follow(ctx context.Context) {
	for s.pending != "" {
		path := s.pending
		s.pending = ""
		s.enter(ctx, path)
	}
}

func (s *Session) enter(ctx context.Context, path string) {
	s.page = path
	s.rl.SetPrompt(promptFor(path))
	switch path {
	case page.HomePath:
		s.problems.Init(ctx)
	case profilePath:
		s.profile.Init(ctx)
	case page.LoginPath:
		s.out.printf("Not logged in. Use 'login' or 'signup'.\n")
	}
}

func promptFor(path string) string {
	switch path {
	case page.LoginPath:
		return "solveit (logged out)> "
	case profilePath:
		return "solveit profile> "
	default:
		return "solveit> "
	}
}

func (s *Session) confirm(prompt string) bool {
	s.rl.SetPrompt(prompt + " [y/N] ")
	defer s.rl.SetPrompt(promptFor(s.page))

	answer, err := s.rl.Readline()
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// ask reads one field, offering def as editable text.
func (s *Session) ask(label, def string) (string, error) {
	s.rl.SetPrompt(label + ": ")
	defer s.rl.SetPrompt(promptFor(s.page))
	if def != "" {
		return s.rl.ReadlineWithDefault(def)
	}
	return s.rl.Readline()
}

func (s *Session) askPassword(label string) (string, error) {
	defer s.rl.SetPrompt(promptFor(s.page))
	b, err := s.rl.ReadPassword(label + ": ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
