package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const DefaultCategory = "General"

// TimestampLayout is the naive layout the backend writes for every instant.
const TimestampLayout = "2006-01-02 15:04:05"

type Problem struct {
	ID        string    `json:"id"`
	Problem   string    `json:"problem"`
	Solution  string    `json:"solution"`
	Category  string    `json:"category"`
	Timestamp Timestamp `json:"timestamp"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// DisplayCategory falls back to DefaultCategory for records stored without one.
func (p Problem) DisplayCategory() string {
	if p.Category == "" {
		return DefaultCategory
	}
	return p.Category
}

// Updated reports whether the record was edited after creation.
func (p Problem) Updated() bool {
	return !p.UpdatedAt.IsZero() && !p.UpdatedAt.Equal(p.Timestamp.Time)
}

type User struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

type Statistics struct {
	TotalProblems   int            `json:"total_problems"`
	TotalCategories int            `json:"total_categories"`
	Categories      map[string]int `json:"categories"`
}

type ProblemInput struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Category string `json:"category"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// Timestamp is a time.Time that reads both the backend's naive layout
// (interpreted in local time) and RFC 3339.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

func ParseTimestamp(value string) (Timestamp, error) {
	if value == "" {
		return Timestamp{}, nil
	}
	if t, err := time.ParseInLocation(TimestampLayout, value, time.Local); err == nil {
		return Timestamp{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return Timestamp{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return Timestamp{Time: t}, nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Time.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
