package problems

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"solveit/internal/models"
)

// Apply returns the filtered view of snapshot, newest first. The snapshot
// itself is never reordered.
func Apply(snapshot []models.Problem, f Filter) []models.Problem {
	term := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Problem, 0, len(snapshot))
	for _, p := range snapshot {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Problem), term) &&
			!strings.Contains(strings.ToLower(p.Solution), term) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}

	SortNewestFirst(out)
	return out
}

func SortNewestFirst(problems []models.Problem) {
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Timestamp.After(problems[j].Timestamp.Time)
	})
}

// CountRecent counts records created at or after since.
func CountRecent(problems []models.Problem, since time.Time) int {
	n := 0
	for _, p := range problems {
		if !p.Timestamp.Before(since) {
			n++
		}
	}
	return n
}

type CategoryOption struct {
	Name  string
	Count int
}

func (o CategoryOption) Label() string {
	return fmt.Sprintf("%s (%d)", o.Name, o.Count)
}

// CategoryOptions lists categories by name.
func CategoryOptions(categories map[string]int) []CategoryOption {
	out := make([]CategoryOption, 0, len(categories))
	for name, count := range categories {
		out = append(out, CategoryOption{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summary is the statistics panel.
type Summary struct {
	TotalProblems   int
	TotalCategories int
	Recent          int
	Categories      []CategoryOption
}
