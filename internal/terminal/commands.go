package terminal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"solveit/internal/auth"
	"solveit/internal/models"
	"solveit/internal/page"
	"solveit/internal/problems"
	"solveit/internal/profile"
)

type command struct {
	usage    string
	help     string
	loggedIn bool
	run      func(s *Session, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login [username]", help: "Log in", run: (*Session).cmdLogin},
	"signup":   {usage: "signup", help: "Create an account", run: (*Session).cmdSignup},
	"logout":   {usage: "logout", help: "End the session", loggedIn: true, run: (*Session).cmdLogout},
	"list":     {usage: "list", help: "Reload problems and statistics", loggedIn: true, run: (*Session).cmdList},
	"search":   {usage: "search [term...]", help: "Filter by text; no term clears", loggedIn: true, run: (*Session).cmdSearch},
	"category": {usage: "category [name]", help: "Filter by category; no name clears", loggedIn: true, run: (*Session).cmdCategory},
	"stats":    {usage: "stats", help: "Show statistics", loggedIn: true, run: (*Session).cmdStats},
	"add":      {usage: "add", help: "Add a problem, or save the inline edit", loggedIn: true, run: (*Session).cmdAdd},
	"edit":     {usage: "edit <id>", help: "Edit a problem in the main form", loggedIn: true, run: (*Session).cmdEdit},
	"modal":    {usage: "modal <id>", help: "Edit a problem fetched from the server", loggedIn: true, run: (*Session).cmdModal},
	"cancel":   {usage: "cancel", help: "Abandon the current edit", loggedIn: true, run: (*Session).cmdCancel},
	"delete":   {usage: "delete <id>", help: "Delete a problem", loggedIn: true, run: (*Session).cmdDelete},
	"export":   {usage: "export [dir]", help: "Download all problems as JSON", loggedIn: true, run: (*Session).cmdExport},
	"profile":  {usage: "profile", help: "Show account details", loggedIn: true, run: (*Session).cmdProfile},
	"passwd":   {usage: "passwd", help: "Change password", loggedIn: true, run: (*Session).cmdPasswd},
	"home":     {usage: "home", help: "Back to the problem list", loggedIn: true, run: (*Session).cmdHome},
}

func (s *Session) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "exit", "quit":
		return ErrExit
	case "help":
		s.printHelp()
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if cmd.loggedIn && s.page == page.LoginPath {
		return fmt.Errorf("%s: log in first", name)
	}
	return cmd.run(s, ctx, args)
}

func (s *Session) printHelp() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	s.out.printf("Commands:\n")
	for _, name := range names {
		s.out.printf("  %-18s %s\n", commands[name].usage, commands[name].help)
	}
	s.out.printf("  %-18s %s\n", "help", "Show this list")
	s.out.printf("  %-18s %s\n", "exit", "Quit")
}

func (s *Session) cmdLogin(ctx context.Context, args []string) error {
	var (
		form auth.LoginForm
		err  error
	)
	if len(args) > 0 {
		form.Username = args[0]
	} else if form.Username, err = s.ask("Username", ""); err != nil {
		return err
	}
	if form.Password, err = s.askPassword("Password"); err != nil {
		return err
	}
	return s.auth.Login(ctx, form)
}

func (s *Session) cmdSignup(ctx context.Context, args []string) error {
	var (
		form auth.SignupForm
		err  error
	)
	if form.Username, err = s.ask("Username", ""); err != nil {
		return err
	}
	if form.Email, err = s.ask("Email", ""); err != nil {
		return err
	}
	if form.Password, err = s.askPassword("Password"); err != nil {
		return err
	}
	return s.auth.Signup(ctx, form)
}

func (s *Session) cmdLogout(ctx context.Context, args []string) error {
	s.problems.Logout(ctx)
	return nil
}

func (s *Session) cmdHome(ctx context.Context, args []string) error {
	s.Navigate(page.HomePath)
	return nil
}

func (s *Session) cmdList(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	return s.problems.Refresh(ctx)
}

func (s *Session) cmdStats(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	return s.problems.LoadStatistics(ctx)
}

func (s *Session) cmdSearch(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	f := s.problems.State().Filter
	f.Search = strings.Join(args, " ")
	s.problems.SetFilter(f)
	return nil
}

func (s *Session) cmdCategory(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	f := s.problems.State().Filter
	f.Category = strings.Join(args, " ")
	s.problems.SetFilter(f)
	return nil
}

func (s *Session) cmdAdd(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	form, err := s.readForm(s.view.Draft())
	if err != nil {
		return err
	}
	s.view.keep(form)
	return s.problems.Submit(ctx, form)
}

func (s *Session) cmdEdit(ctx context.Context, args []string) error {
	id, err := s.onHomeWithID(args)
	if err != nil {
		return err
	}
	if !s.problems.StartInlineEdit(id) {
		return fmt.Errorf("no problem with id %s", id)
	}
	return s.cmdAdd(ctx, nil)
}

func (s *Session) cmdModal(ctx context.Context, args []string) error {
	id, err := s.onHomeWithID(args)
	if err != nil {
		return err
	}
	if err := s.problems.OpenModal(ctx, id); err != nil {
		return err
	}
	form, err := s.readForm(s.problems.State().Edit.Draft)
	if err != nil {
		s.problems.CloseModal()
		return err
	}
	return s.problems.SubmitModal(ctx, form)
}

func (s *Session) cmdCancel(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	if s.problems.State().Edit.ModalOpen() {
		s.problems.CloseModal()
	} else {
		s.problems.CancelEdit()
	}
	return nil
}

func (s *Session) cmdDelete(ctx context.Context, args []string) error {
	id, err := s.onHomeWithID(args)
	if err != nil {
		return err
	}
	return s.problems.Delete(ctx, id)
}

func (s *Session) cmdExport(ctx context.Context, args []string) error {
	if err := s.onHome(); err != nil {
		return err
	}
	dir := s.exportTo
	if len(args) > 0 {
		dir = args[0]
	}
	s.download.setDir(dir)
	return s.problems.Export(ctx)
}

func (s *Session) cmdProfile(ctx context.Context, args []string) error {
	s.Navigate(profilePath)
	return nil
}

func (s *Session) cmdPasswd(ctx context.Context, args []string) error {
	var (
		form profile.PasswordForm
		err  error
	)
	if form.Current, err = s.askPassword("Current password"); err != nil {
		return err
	}
	if form.New, err = s.askPassword("New password"); err != nil {
		return err
	}
	if form.Confirm, err = s.askPassword("Confirm new password"); err != nil {
		return err
	}
	return s.profile.ChangePassword(ctx, form)
}

func (s *Session) onHome() error {
	if s.page != page.HomePath {
		return fmt.Errorf("only available on the problem list, use 'home'")
	}
	return nil
}

func (s *Session) onHomeWithID(args []string) (string, error) {
	if err := s.onHome(); err != nil {
		return "", err
	}
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one problem id")
	}
	return args[0], nil
}

func (s *Session) readForm(def problems.Form) (problems.Form, error) {
	var (
		form problems.Form
		err  error
	)
	if form.Problem, err = s.ask("Problem", def.Problem); err != nil {
		return form, err
	}
	if form.Solution, err = s.ask("Solution", def.Solution); err != nil {
		return form, err
	}
	category := def.Category
	if category == "" {
		category = models.DefaultCategory
	}
	if form.Category, err = s.ask("Category", category); err != nil {
		return form, err
	}
	return form, nil
}
