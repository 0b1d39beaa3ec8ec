package page

import (
	"sync"
	"time"
)

const DefaultMessageTimeout = 5 * time.Second

// Display is where the board puts and removes messages.
type Display interface {
	ShowMessage(msg Message)
	ClearMessage()
}

// Board shows one message at a time and dismisses it after a delay.
// Showing a message replaces the previous one; a replaced message's timer
// never clears its successor.
type Board struct {
	mu      sync.Mutex
	display Display
	timeout time.Duration
	seq     uint64
	timer   *time.Timer
	current *Message
}

func NewBoard(display Display, timeout time.Duration) *Board {
	if timeout <= 0 {
		timeout = DefaultMessageTimeout
	}
	return &Board{display: display, timeout: timeout}
}

func (b *Board) Notify(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	if b.current != nil {
		b.display.ClearMessage()
	}

	b.seq++
	seq := b.seq
	b.current = &msg
	b.display.ShowMessage(msg)
	b.timer = time.AfterFunc(b.timeout, func() {
		b.dismiss(seq)
	})
}

// Current returns the message on display, if any.
func (b *Board) Current() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Message{}, false
	}
	return *b.current, true
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.current != nil {
		b.current = nil
		b.display.ClearMessage()
	}
}

func (b *Board) dismiss(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq || b.current == nil {
		return
	}
	b.current = nil
	b.display.ClearMessage()
}
