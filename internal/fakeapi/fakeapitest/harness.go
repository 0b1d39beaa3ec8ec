// Package fakeapitest runs the in-memory API under httptest for package tests.
package fakeapitest

import (
	"context"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"solveit/internal/api"
	"solveit/internal/fakeapi"
	"solveit/internal/models"
)

// Harness is a running fake API plus a client that already holds a session.
type Harness struct {
	API    *fakeapi.Server
	HTTP   *httptest.Server
	Client *api.Client
	UserID string
}

func NewHarness(t testing.TB, opts ...fakeapi.Option) *Harness {
	t.Helper()

	srv := fakeapi.New(opts...)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	userID, err := srv.AddUser(fakeapi.DemoUsername, fakeapi.DemoEmail, fakeapi.DemoPassword)
	if err != nil {
		t.Fatalf("failed to add demo user: %v", err)
	}

	client := NewClient(t, ts.URL)
	creds := models.Credentials{Username: fakeapi.DemoUsername, Password: fakeapi.DemoPassword}
	if err := client.Login(context.Background(), creds); err != nil {
		t.Fatalf("failed to log in demo user: %v", err)
	}
	srv.ResetRequests()

	return &Harness{API: srv, HTTP: ts, Client: client, UserID: userID}
}

// NewClient returns a client with its own cookie jar and no session.
func NewClient(t testing.TB, baseURL string) *api.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return api.New(baseURL, 5*time.Second, api.WithCookieJar(jar))
}
