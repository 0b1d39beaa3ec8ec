package fakeapi

import (
	"time"

	"solveit/internal/models"
)

const (
	DemoUsername = "alice"
	DemoEmail    = "alice@example.com"
	DemoPassword = "secret123"
)

// NewDemo returns a server with the demo account and a few notes, for local runs.
func NewDemo() (*Server, error) {
	srv := New()
	userID, err := srv.AddUser(DemoUsername, DemoEmail, DemoPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	srv.Seed(userID, models.Problem{
		Problem:   "go test hangs on CI",
		Solution:  "A goroutine blocked on an unbuffered channel; add -timeout and dump stacks.",
		Category:  "Go",
		Timestamp: models.NewTimestamp(now.Add(-30 * 24 * time.Hour)),
	})
	srv.Seed(userID, models.Problem{
		Problem:   "Docker build ignores .env changes",
		Solution:  "Build cache keyed the COPY layer; bust it with --no-cache or reorder layers.",
		Category:  "DevOps",
		Timestamp: models.NewTimestamp(now.Add(-3 * 24 * time.Hour)),
	})
	srv.Seed(userID, models.Problem{
		Problem:   "<script> tags show up in notes",
		Solution:  "Escape on render, never concatenate raw text into markup.",
		Timestamp: models.NewTimestamp(now.Add(-2 * time.Hour)),
	})
	return srv, nil
}
