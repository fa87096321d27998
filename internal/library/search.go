package library

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"chordsheet/internal/model"
)

var (
	// ErrNotFound is returned when a query matches no song.
	ErrNotFound = errors.New("song not found")
	// ErrAmbiguous is returned when a query matches several songs equally well.
	ErrAmbiguous = errors.New("song query is ambiguous")
)

const (
	// MinSearchScore is the lowest similarity Search reports.
	MinSearchScore = 0.75
	// MinResolveScore is the lowest similarity Resolve accepts for a fuzzy match.
	MinResolveScore = 0.85
)

// Match is a search result.
type Match struct {
	Entry model.Entry
	Score float64
}

// Score rates how well query matches an entry's title or file name, in [0, 1].
// Substring matches always score at least 0.9.
func Score(e model.Entry, query string) float64 {
	q := normalize(query)
	if q == "" {
		return 0
	}

	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false

	best := 0.0
	for _, candidate := range []string{normalize(e.Title), normalize(baseName(e.Name))} {
		if candidate == "" {
			continue
		}
		score := strutil.Similarity(q, candidate, jw)
		if strings.Contains(candidate, q) {
			score = max(score, 0.9+0.1*float64(len(q))/float64(len(candidate)))
		}
		best = max(best, score)
	}
	return best
}

// Search returns entries scoring at least MinSearchScore, best first.
// limit <= 0 returns every match.
func Search(entries []model.Entry, query string, limit int) []Match {
	var matches []Match
	for _, e := range entries {
		if s := Score(e, query); s >= MinSearchScore {
			matches = append(matches, Match{Entry: e, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Resolve finds the one entry a query names: an exact ID, name or title
// first, then a unique substring match, then the best fuzzy match.
func Resolve(entries []model.Entry, query string) (model.Entry, error) {
	q := normalize(query)
	if q == "" {
		return model.Entry{}, fmt.Errorf("empty song query")
	}

	exact := make([]model.Entry, 0, 1)
	for _, e := range entries {
		if strings.EqualFold(e.ID, q) || strings.EqualFold(e.Name, q) ||
			strings.EqualFold(baseName(e.Name), q) || normalize(e.Title) == q {
			exact = append(exact, e)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return model.Entry{}, fmt.Errorf("%w: %q matched %s exactly; use the file name", ErrAmbiguous, query, labels(exact))
	}

	contains := make([]model.Entry, 0, 4)
	for _, e := range entries {
		if strings.Contains(normalize(e.Title), q) || strings.Contains(strings.ToLower(e.Name), q) {
			contains = append(contains, e)
		}
	}
	if len(contains) == 1 {
		return contains[0], nil
	}
	if len(contains) > 1 {
		return model.Entry{}, fmt.Errorf("%w: %q: %s", ErrAmbiguous, query, labels(contains))
	}

	matches := Search(entries, query, 2)
	if len(matches) == 0 || matches[0].Score < MinResolveScore {
		return model.Entry{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	if len(matches) > 1 && matches[1].Score == matches[0].Score {
		return model.Entry{}, fmt.Errorf("%w: %q: %s", ErrAmbiguous, query, labels([]model.Entry{matches[0].Entry, matches[1].Entry}))
	}
	return matches[0].Entry, nil
}

// SelectByQuery resolves a comma-separated list of queries. "all" selects
// every entry. Duplicates are dropped.
func SelectByQuery(entries []model.Entry, raw string) ([]model.Entry, error) {
	parts := strings.Split(raw, ",")
	queries := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			queries = append(queries, p)
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no valid song query provided")
	}

	seen := make(map[string]struct{})
	selected := make([]model.Entry, 0, len(queries))
	for _, q := range queries {
		if strings.EqualFold(q, "all") {
			return entries, nil
		}

		match, err := Resolve(entries, q)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[match.ID]; ok {
			continue
		}
		seen[match.ID] = struct{}{}
		selected = append(selected, match)
	}
	return selected, nil
}

func labels(entries []model.Entry) string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s (%s)", displayTitle(e), e.Name))
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

func baseName(name string) string {
	return strings.TrimSuffix(path.Base(name), path.Ext(name))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
