// Package fakeapi is an in-memory implementation of the SolveIt REST API.
// It backs package tests and the dev server's -fake mode.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"solveit/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookie = "solveit_session"

// Request is one call recorded by the server.
type Request struct {
	Method string
	Path   string
	Body   string
}

type account struct {
	user         models.User
	passwordHash []byte
}

type storedProblem struct {
	problem models.Problem
	owner   string
}

type Server struct {
	mu       sync.Mutex
	accounts map[string]*account
	sessions map[string]string
	problems []storedProblem
	requests []Request
	failures map[string]int
	now      func() time.Time
	router   *mux.Router
}

type Option func(*Server)

// WithClock replaces time.Now for created and updated instants.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		failures: make(map[string]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.record, s.injectFailures)

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/user", s.handleCurrentUser).Methods(http.MethodGet)
	api.HandleFunc("/user/password", s.requireLogin(s.handleChangePassword)).Methods(http.MethodPut)
	api.HandleFunc("/statistics", s.requireLogin(s.handleStatistics)).Methods(http.MethodGet)
	api.HandleFunc("/export", s.requireLogin(s.handleExport)).Methods(http.MethodGet)
	api.HandleFunc("/problems", s.requireLogin(s.handleListProblems)).Methods(http.MethodGet)
	api.HandleFunc("/problems", s.requireLogin(s.handleCreateProblem)).Methods(http.MethodPost)
	api.HandleFunc("/problems/{id}", s.requireLogin(s.handleGetProblem)).Methods(http.MethodGet)
	api.HandleFunc("/problems/{id}", s.requireLogin(s.handleUpdateProblem)).Methods(http.MethodPut)
	api.HandleFunc("/problems/{id}", s.requireLogin(s.handleDeleteProblem)).Methods(http.MethodDelete)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(username, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.accounts[username] = &account{
		user: models.User{
			ID:        id,
			Username:  username,
			Email:     email,
			CreatedAt: models.NewTimestamp(s.now()),
		},
		passwordHash: hash,
	}
	return id, nil
}

// Seed stores a problem for the given user id as-is.
func (s *Server) Seed(owner string, p models.Problem) models.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Category == "" {
		p.Category = models.DefaultCategory
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = models.NewTimestamp(s.now())
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.Timestamp
	}
	s.problems = append(s.problems, storedProblem{problem: p, owner: owner})
	return p
}

// FailNext makes the next n calls of "METHOD /path" answer with 500.
func (s *Server) FailNext(method, path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = n
}

// ExpireSessions drops every session so later calls see 401.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo filters recorded requests by method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAndRestore(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		remaining := s.failures[key]
		if remaining > 0 {
			s.failures[key] = remaining - 1
		}
		s.mu.Unlock()
		if remaining > 0 {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionUser(r *http.Request) (*account, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	acc, ok := s.accounts[username]
	return acc, ok
}

type authedHandler func(w http.ResponseWriter, r *http.Request, acc *account)

func (s *Server) requireLogin(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := s.sessionUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		h(w, r, acc)
	}
}

func (s *Server) startSession(w http.ResponseWriter, username string) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = username
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
}

// account looks up a user and copies its password hash under the lock.
func (s *Server) account(username string) (*account, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return nil, nil, false
	}
	return acc, acc.passwordHash, true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	acc, hash, ok := s.account(username)
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	s.startSession(w, username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    map[string]string{"id": acc.user.ID, "username": acc.user.Username},
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	username := strings.TrimSpace(reg.Username)
	email := strings.TrimSpace(reg.Email)
	if username == "" || email == "" || reg.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if len(reg.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	s.mu.Lock()
	_, taken := s.accounts[username]
	emailTaken := false
	for _, acc := range s.accounts {
		if acc.user.Email == email {
			emailTaken = true
		}
	}
	s.mu.Unlock()
	if taken {
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	if emailTaken {
		writeError(w, http.StatusBadRequest, "Email already exists")
		return
	}

	id, err := s.AddUser(username, email, reg.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	s.startSession(w, username)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Signup successful",
		"user":    map[string]string{"id": id, "username": username},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.sessionUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, acc *account) {
	var change models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if change.CurrentPassword == "" || change.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}
	if len(change.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}
	s.mu.Lock()
	current := acc.passwordHash
	s.mu.Unlock()
	if bcrypt.CompareHashAndPassword(current, []byte(change.CurrentPassword)) != nil {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}
	s.mu.Lock()
	acc.passwordHash = hash
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (s *Server) ownedProblems(owner string) []models.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Problem{}
	for _, sp := range s.problems {
		if sp.owner == owner {
			out = append(out, sp.problem)
		}
	}
	return out
}

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request, acc *account) {
	writeJSON(w, http.StatusOK, s.ownedProblems(acc.user.ID))
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request, acc *account) {
	id := mux.Vars(r)["id"]
	for _, p := range s.ownedProblems(acc.user.ID) {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Problem not found")
}

func (s *Server) handleCreateProblem(w http.ResponseWriter, r *http.Request, acc *account) {
	var in map[string]*string
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in["problem"] == nil || in["solution"] == nil {
		writeError(w, http.StatusBadRequest, "Problem and solution are required")
		return
	}
	p := models.Problem{
		Problem:  *in["problem"],
		Solution: *in["solution"],
	}
	if c := in["category"]; c != nil {
		p.Category = *c
	}
	created := s.Seed(acc.user.ID, p)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProblem(w http.ResponseWriter, r *http.Request, acc *account) {
	id := mux.Vars(r)["id"]
	var in map[string]*string
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.problems {
		sp := &s.problems[i]
		if sp.owner != acc.user.ID || sp.problem.ID != id {
			continue
		}
		if v := in["problem"]; v != nil {
			sp.problem.Problem = *v
		}
		if v := in["solution"]; v != nil {
			sp.problem.Solution = *v
		}
		if v := in["category"]; v != nil {
			sp.problem.Category = *v
		}
		sp.problem.UpdatedAt = models.NewTimestamp(s.now())
		writeJSON(w, http.StatusOK, sp.problem)
		return
	}
	writeError(w, http.StatusNotFound, "Problem not found")
}

func (s *Server) handleDeleteProblem(w http.ResponseWriter, r *http.Request, acc *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sp := range s.problems {
		if sp.owner == acc.user.ID && sp.problem.ID == id {
			s.problems = append(s.problems[:i], s.problems[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Problem deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Problem not found")
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request, acc *account) {
	problems := s.ownedProblems(acc.user.ID)
	categories := map[string]int{}
	for _, p := range problems {
		categories[p.DisplayCategory()]++
	}
	writeJSON(w, http.StatusOK, models.Statistics{
		TotalProblems:   len(problems),
		TotalCategories: len(categories),
		Categories:      categories,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, acc *account) {
	problems := s.ownedProblems(acc.user.ID)
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Timestamp.Before(problems[j].Timestamp.Time)
	})
	data, err := json.MarshalIndent(problems, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export problems")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=problems_export.json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
