package problems

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"solveit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

func problemAt(id string, offset time.Duration, problem, solution, category string) models.Problem {
	ts := models.NewTimestamp(base.Add(offset))
	return models.Problem{ID: id, Problem: problem, Solution: solution, Category: category, Timestamp: ts, UpdatedAt: ts}
}

func randomSnapshot(r *rand.Rand, n int) []models.Problem {
	words := []string{"Deadlock", "nil map", "TIMEOUT", "cache", "Retry", "index", "panic"}
	categories := []string{"Go", "DB", "General", ""}
	out := make([]models.Problem, n)
	for i := range out {
		out[i] = problemAt(
			fmt.Sprintf("p%d", i),
			time.Duration(r.Intn(5))*time.Hour,
			words[r.Intn(len(words))]+" in service",
			"fix the "+words[r.Intn(len(words))],
			categories[r.Intn(len(categories))],
		)
	}
	return out
}

func assertNewestFirst(t *testing.T, list []models.Problem) {
	t.Helper()
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].Timestamp.After(list[i-1].Timestamp.Time),
			"%s displayed after %s but is newer", list[i].ID, list[i-1].ID)
	}
}

func TestApply_EmptyFilterIsFullSortedSnapshot(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		snapshot := randomSnapshot(r, r.Intn(20))
		original := make([]models.Problem, len(snapshot))
		copy(original, snapshot)

		view := Apply(snapshot, Filter{})

		assert.ElementsMatch(t, snapshot, view)
		assertNewestFirst(t, view)
		assert.Equal(t, original, snapshot, "snapshot must not be reordered")
	}
}

func TestApply_SearchIsCaseInsensitiveSubset(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	terms := []string{"deadlock", "NIL", "Timeout", "  cache ", "service", "zzz"}
	for i := 0; i < 50; i++ {
		snapshot := randomSnapshot(r, 1+r.Intn(20))
		term := terms[r.Intn(len(terms))]

		view := Apply(snapshot, Filter{Search: term})
		all := Apply(snapshot, Filter{})

		needle := strings.ToLower(strings.TrimSpace(term))
		for _, p := range view {
			assert.Contains(t, all, p)
			matched := strings.Contains(strings.ToLower(p.Problem), needle) ||
				strings.Contains(strings.ToLower(p.Solution), needle)
			assert.True(t, matched, "%q does not match %q", p.ID, term)
		}
		assertNewestFirst(t, view)
	}
}

func TestApply_CategoryAndSearchCombine(t *testing.T) {
	snapshot := []models.Problem{
		problemAt("1", 0, "Deadlock in worker", "use a buffered channel", "Go"),
		problemAt("2", time.Hour, "deadlock on rows", "commit earlier", "DB"),
		problemAt("3", 2*time.Hour, "slow build", "cache modules", "Go"),
	}

	assert.Equal(t, []string{"2", "1"}, ids(Apply(snapshot, Filter{Search: "DEADLOCK"})))
	assert.Equal(t, []string{"3", "1"}, ids(Apply(snapshot, Filter{Category: "Go"})))
	assert.Equal(t, []string{"1"}, ids(Apply(snapshot, Filter{Search: "deadlock", Category: "Go"})))
	assert.Empty(t, Apply(snapshot, Filter{Category: "go"}))
	assert.Equal(t, []string{"3"}, ids(Apply(snapshot, Filter{Search: "MODULES"})))
}

func TestSortNewestFirst_Stable(t *testing.T) {
	list := []models.Problem{
		problemAt("a", 0, "", "", ""),
		problemAt("b", time.Hour, "", "", ""),
		problemAt("c", 0, "", "", ""),
		problemAt("d", time.Hour, "", "", ""),
	}
	SortNewestFirst(list)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(list))
}

func TestCountRecent(t *testing.T) {
	now := base
	list := []models.Problem{
		problemAt("old", -8*24*time.Hour, "", "", ""),
		problemAt("edge", -7*24*time.Hour, "", "", ""),
		problemAt("new", -time.Hour, "", "", ""),
		{ID: "undated"},
	}
	assert.Equal(t, 2, CountRecent(list, now.Add(-7*24*time.Hour)))
}

func TestCategoryOptions(t *testing.T) {
	options := CategoryOptions(map[string]int{"Go": 3, "DB": 1, "General": 2})
	require.Len(t, options, 3)
	assert.Equal(t, "DB", options[0].Name)
	assert.Equal(t, "General (2)", options[1].Label())
	assert.Equal(t, "Go (3)", options[2].Label())
	assert.Empty(t, CategoryOptions(nil))
}

func ids(list []models.Problem) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}
