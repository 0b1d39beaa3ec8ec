package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"solveit/internal/fakeapi"
	"solveit/internal/fakeapi/fakeapitest"
	"solveit/internal/models"
	"solveit/internal/page"
	"solveit/internal/problems"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keepDefault accepts the pre-filled value at a ReadlineWithDefault prompt.
const keepDefault = "\x00"

type scriptReader struct {
	lines    []string
	prompts  []string
	defaults []string
}

func (r *scriptReader) next() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) Readline() (string, error) { return r.next() }

func (r *scriptReader) ReadlineWithDefault(what string) (string, error) {
	r.defaults = append(r.defaults, what)
	line, err := r.next()
	if line == keepDefault {
		return what, err
	}
	return line, err
}

func (r *scriptReader) ReadPassword(prompt string) ([]byte, error) {
	r.prompts = append(r.prompts, prompt)
	line, err := r.next()
	return []byte(line), err
}

func (r *scriptReader) SetPrompt(prompt string) { r.prompts = append(r.prompts, prompt) }

func (r *scriptReader) feed(lines ...string) { r.lines = append(r.lines, lines...) }

type fixture struct {
	h      *fakeapitest.Harness
	reader *scriptReader
	out    *bytes.Buffer
	s      *Session
	dir    string
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	h := fakeapitest.NewHarness(t)
	client := h.Client
	if !loggedIn {
		client = fakeapitest.NewClient(t, h.HTTP.URL)
	}

	f := &fixture{h: h, reader: &scriptReader{}, out: &bytes.Buffer{}, dir: t.TempDir()}
	f.s = New(Options{
		Client:         client,
		Reader:         f.reader,
		Output:         f.out,
		ExportDir:      f.dir,
		MessageTimeout: time.Hour,
	})
	return f
}

func (f *fixture) exec(t *testing.T, line string) error {
	t.Helper()
	return f.s.Exec(context.Background(), line)
}

func TestStartWithoutSession(t *testing.T) {
	f := newFixture(t, false)
	f.s.Start(context.Background())

	assert.Equal(t, page.LoginPath, f.s.Page())
	assert.Contains(t, f.out.String(), "Not logged in")

	err := f.exec(t, "list")
	assert.EqualError(t, err, "list: log in first")
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t, false)
	f.s.Start(context.Background())

	t.Run("BadPassword", func(t *testing.T) {
		f.reader.feed("wrong-password")
		require.Error(t, f.exec(t, "login alice"))
		assert.Equal(t, page.LoginPath, f.s.Page())
		assert.Contains(t, f.out.String(), "[error] Invalid username or password")
	})

	t.Run("Success", func(t *testing.T) {
		f.reader.feed(fakeapi.DemoPassword)
		require.NoError(t, f.exec(t, "login alice"))
		assert.Equal(t, page.HomePath, f.s.Page())
		assert.Contains(t, f.out.String(), "Welcome, alice!")
		assert.Contains(t, f.out.String(), "No problems found. Add your first problem above!")
	})

	t.Run("Logout", func(t *testing.T) {
		require.NoError(t, f.exec(t, "logout"))
		assert.Equal(t, page.LoginPath, f.s.Page())
	})
}

func TestSignup(t *testing.T) {
	f := newFixture(t, false)
	f.s.Start(context.Background())

	f.reader.feed("bob", "bob@example.com", "abc")
	require.Error(t, f.exec(t, "signup"))
	assert.Contains(t, f.out.String(), "[error] Password must be at least 6 characters")
	assert.Empty(t, f.h.API.RequestsTo(http.MethodPost, "/signup"))

	f.reader.feed("bob", "bob@example.com", "abcdef")
	require.NoError(t, f.exec(t, "signup"))
	assert.Equal(t, page.HomePath, f.s.Page())
	assert.Contains(t, f.out.String(), "Welcome, bob!")
}

func TestProblemCommands(t *testing.T) {
	f := newFixture(t, true)
	seeded := f.h.API.Seed(f.h.UserID, models.Problem{Problem: "old", Solution: "fix", Category: "Go"})
	f.s.Start(context.Background())
	require.Equal(t, page.HomePath, f.s.Page())

	t.Run("Add", func(t *testing.T) {
		f.reader.feed("Disk full", "Rotate logs", keepDefault)
		require.NoError(t, f.exec(t, "add"))
		assert.Contains(t, f.out.String(), "[success] Problem saved successfully!")

		posts := f.h.API.RequestsTo(http.MethodPost, "/api/problems")
		require.Len(t, posts, 1)
		assert.JSONEq(t, `{"problem":"Disk full","solution":"Rotate logs","category":"General"}`, posts[0].Body)
		assert.Len(t, f.s.problems.State().Snapshot, 2)
	})

	t.Run("AddKeepsDraftOnValidationError", func(t *testing.T) {
		f.reader.feed("half typed", "   ", "Ops")
		require.Error(t, f.exec(t, "add"))
		assert.Contains(t, f.out.String(), "[error] Please fill in both fields")
		assert.Equal(t, "half typed", f.s.view.Draft().Problem)
		f.s.problems.CancelEdit()
	})

	t.Run("InlineEdit", func(t *testing.T) {
		f.h.API.ResetRequests()
		f.reader.feed(keepDefault, "Better fix", keepDefault)
		require.NoError(t, f.exec(t, "edit "+seeded.ID))

		puts := f.h.API.RequestsTo(http.MethodPut, "/api/problems/"+seeded.ID)
		require.Len(t, puts, 1)
		assert.JSONEq(t, `{"problem":"old","solution":"Better fix","category":"Go"}`, puts[0].Body)
		assert.Contains(t, f.out.String(), "[success] Problem updated successfully!")
		assert.False(t, f.s.problems.State().Edit.Active())
	})

	t.Run("EditUnknownID", func(t *testing.T) {
		assert.Error(t, f.exec(t, "edit nope"))
	})

	t.Run("Modal", func(t *testing.T) {
		f.h.API.ResetRequests()
		f.reader.feed(keepDefault, keepDefault, "Golang")
		require.NoError(t, f.exec(t, "modal "+seeded.ID))

		assert.Len(t, f.h.API.RequestsTo(http.MethodGet, "/api/problems/"+seeded.ID), 1)
		puts := f.h.API.RequestsTo(http.MethodPut, "/api/problems/"+seeded.ID)
		require.Len(t, puts, 1)
		assert.JSONEq(t, `{"problem":"old","solution":"Better fix","category":"Golang"}`, puts[0].Body)
		assert.False(t, f.s.problems.State().Edit.ModalOpen())
	})

	t.Run("Filters", func(t *testing.T) {
		require.NoError(t, f.exec(t, `search "disk"`))
		assert.Equal(t, problems.Filter{Search: "disk"}, f.s.problems.State().Filter)

		require.NoError(t, f.exec(t, "category Golang"))
		assert.Equal(t, problems.Filter{Search: "disk", Category: "Golang"}, f.s.problems.State().Filter)

		require.NoError(t, f.exec(t, "search"))
		require.NoError(t, f.exec(t, "category"))
		assert.Equal(t, problems.Filter{}, f.s.problems.State().Filter)
	})

	t.Run("DeleteDeclined", func(t *testing.T) {
		f.h.API.ResetRequests()
		f.reader.feed("n")
		err := f.exec(t, "delete "+seeded.ID)
		assert.ErrorIs(t, err, problems.ErrCancelled)
		assert.Empty(t, f.h.API.Requests())
	})

	t.Run("DeleteConfirmed", func(t *testing.T) {
		f.reader.feed("y")
		require.NoError(t, f.exec(t, "delete "+seeded.ID))
		assert.Contains(t, f.out.String(), "[success] Problem deleted successfully")
		assert.Len(t, f.s.problems.State().Snapshot, 1)
	})

	t.Run("Export", func(t *testing.T) {
		dir := filepath.Join(f.dir, "out")
		require.NoError(t, f.exec(t, "export "+dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Regexp(t, `^problems_export_\d{4}-\d{2}-\d{2}\.json$`, entries[0].Name())

		data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		require.NoError(t, err)
		var exported []models.Problem
		require.NoError(t, json.Unmarshal(data, &exported))
		assert.Len(t, exported, 1)
	})
}

func TestSessionExpiryReturnsToLogin(t *testing.T) {
	f := newFixture(t, true)
	f.s.Start(context.Background())
	require.Equal(t, page.HomePath, f.s.Page())

	f.h.API.ExpireSessions()
	require.Error(t, f.exec(t, "list"))
	assert.Equal(t, page.LoginPath, f.s.Page())
}

func TestProfileCommands(t *testing.T) {
	f := newFixture(t, true)
	f.s.Start(context.Background())

	require.NoError(t, f.exec(t, "profile"))
	assert.Equal(t, profilePath, f.s.Page())
	assert.Contains(t, f.out.String(), "Email:        alice@example.com")

	t.Run("ListNeedsHome", func(t *testing.T) {
		assert.Error(t, f.exec(t, "list"))
	})

	t.Run("ShortPassword", func(t *testing.T) {
		f.reader.feed(fakeapi.DemoPassword, "abcde", "abcde")
		require.Error(t, f.exec(t, "passwd"))
		assert.Contains(t, f.out.String(), "[error] New password must be at least 6 characters")
		assert.Empty(t, f.h.API.RequestsTo(http.MethodPut, "/api/user/password"))
	})

	t.Run("Changed", func(t *testing.T) {
		f.reader.feed(fakeapi.DemoPassword, "abcdef", "abcdef")
		require.NoError(t, f.exec(t, "passwd"))
		assert.Contains(t, f.out.String(), "[success] Password changed successfully!")
	})

	require.NoError(t, f.exec(t, "home"))
	assert.Equal(t, page.HomePath, f.s.Page())
}

func TestDispatch(t *testing.T) {
	f := newFixture(t, true)

	assert.ErrorIs(t, f.exec(t, "exit"), ErrExit)
	assert.EqualError(t, f.exec(t, "frobnicate"), "unknown command: frobnicate")
	assert.Error(t, f.exec(t, `search "unterminated`))
	assert.NoError(t, f.exec(t, "   "))

	require.NoError(t, f.exec(t, "help"))
	assert.Contains(t, f.out.String(), "export [dir]")
}

func TestRunStopsAtEOF(t *testing.T) {
	f := newFixture(t, true)
	f.reader.feed("stats", "frobnicate")
	require.NoError(t, f.s.Run(context.Background()))
	assert.Contains(t, f.out.String(), "Total: 0")
	assert.Contains(t, f.out.String(), "error: unknown command: frobnicate")
}
