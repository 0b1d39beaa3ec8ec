package page

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solveit/internal/logger"

	"github.com/stretchr/testify/assert"
)

type fakeDisplay struct {
	mu      sync.Mutex
	shown   []Message
	clears  int
	current *Message
}

func (d *fakeDisplay) ShowMessage(msg Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = append(d.shown, msg)
	d.current = &msg
}

func (d *fakeDisplay) ClearMessage() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
	d.current = nil
}

func (d *fakeDisplay) visible() *Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func TestBoard_AutoDismiss(t *testing.T) {
	display := &fakeDisplay{}
	board := NewBoard(display, 20*time.Millisecond)

	board.Notify(Success("saved"))
	current, ok := board.Current()
	assert.True(t, ok)
	assert.Equal(t, "saved", current.Text)

	assert.Eventually(t, func() bool { return display.visible() == nil }, time.Second, 5*time.Millisecond)
	_, ok = board.Current()
	assert.False(t, ok)
}

func TestBoard_LatestMessageWins(t *testing.T) {
	display := &fakeDisplay{}
	board := NewBoard(display, 100*time.Millisecond)

	board.Notify(Error("first"))
	time.Sleep(60 * time.Millisecond)
	board.Notify(Success("second"))

	assert.Equal(t, 1, display.clears)
	time.Sleep(60 * time.Millisecond)
	// the first timer would have fired by now; the second message must survive it
	if assert.NotNil(t, display.visible()) {
		assert.Equal(t, "second", display.visible().Text)
	}
	assert.Eventually(t, func() bool { return display.visible() == nil }, time.Second, 5*time.Millisecond)
}

func TestBoard_ClearAndDefaultTimeout(t *testing.T) {
	display := &fakeDisplay{}
	board := NewBoard(display, 0)
	assert.Equal(t, DefaultMessageTimeout, board.timeout)

	board.Notify(Error("x"))
	board.Clear()
	assert.Nil(t, display.visible())
	board.Clear()
	assert.Equal(t, 1, display.clears)
}

type logoutFunc func(ctx context.Context) error

func (f logoutFunc) Logout(ctx context.Context) error { return f(ctx) }

func TestLogout_AlwaysRedirects(t *testing.T) {
	for _, err := range []error{nil, errors.New("offline")} {
		var got []string
		nav := NavigatorFunc(func(path string) { got = append(got, path) })
		Logout(context.Background(), logoutFunc(func(context.Context) error { return err }), nav, logger.Discard())
		assert.Equal(t, []string{LoginPath}, got)
	}
}
