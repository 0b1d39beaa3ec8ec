package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solveit/internal/logger"
	"solveit/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	problemsPath = "/api/problems"
	userPath     = "/api/user"
	passwordPath = "/api/user/password"
	statsPath    = "/api/statistics"
	exportPath   = "/api/export"
	loginPath    = "/login"
	signupPath   = "/signup"
	logoutPath   = "/logout"
)

// Client talks to the SolveIt REST API. One method per endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCookieJar keeps the server session between calls outside the browser.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.Named("api")
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, userPath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Statistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	if err := c.doJSON(ctx, http.MethodGet, statsPath, nil, &stats); err != nil {
		return nil, err
	}
	if stats.Categories == nil {
		stats.Categories = map[string]int{}
	}
	return &stats, nil
}

func (c *Client) ListProblems(ctx context.Context) ([]models.Problem, error) {
	var problems []models.Problem
	if err := c.doJSON(ctx, http.MethodGet, problemsPath, nil, &problems); err != nil {
		return nil, err
	}
	if problems == nil {
		problems = []models.Problem{}
	}
	return problems, nil
}

func (c *Client) GetProblem(ctx context.Context, id string) (*models.Problem, error) {
	var problem models.Problem
	if err := c.doJSON(ctx, http.MethodGet, problemPath(id), nil, &problem); err != nil {
		return nil, err
	}
	return &problem, nil
}

func (c *Client) CreateProblem(ctx context.Context, in models.ProblemInput) (*models.Problem, error) {
	var problem models.Problem
	if err := c.doJSON(ctx, http.MethodPost, problemsPath, in, &problem); err != nil {
		return nil, err
	}
	return &problem, nil
}

func (c *Client) UpdateProblem(ctx context.Context, id string, in models.ProblemInput) (*models.Problem, error) {
	var problem models.Problem
	if err := c.doJSON(ctx, http.MethodPut, problemPath(id), in, &problem); err != nil {
		return nil, err
	}
	return &problem, nil
}

func (c *Client) DeleteProblem(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, problemPath(id), nil, nil)
}

// Export returns the export payload untouched together with its content type.
func (c *Client) Export(ctx context.Context) ([]byte, string, error) {
	resp, err := c.do(ctx, http.MethodGet, exportPath, nil)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return resp.body, contentType, nil
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	return c.doJSON(ctx, http.MethodPost, loginPath, creds, nil)
}

func (c *Client) Signup(ctx context.Context, reg models.Registration) error {
	return c.doJSON(ctx, http.MethodPost, signupPath, reg, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, logoutPath, nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return c.doJSON(ctx, http.MethodPut, passwordPath, change, nil)
}

func problemPath(id string) string {
	return problemsPath + "/" + url.PathEscape(id)
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = encoded
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	fields := logrus.Fields{"method": method, "path": path}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Component(fields).WithError(err).Warn("request failed")
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Component(fields).WithError(err).Warn("failed to read response body")
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	fields["status"] = resp.StatusCode
	fields["duration_ms"] = time.Since(start).Milliseconds()
	c.log.Component(fields).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, data)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func newStatusError(status int, body []byte) *StatusError {
	statusErr := &StatusError{StatusCode: status}
	var payload models.ErrorBody
	if err := json.Unmarshal(body, &payload); err == nil {
		statusErr.Message = payload.Error
	}
	return statusErr
}
