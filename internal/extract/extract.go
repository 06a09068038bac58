package extract

import (
	"sort"

	"github.com/hyperifyio/textextract/internal/patterns"
)

// Matches is the deduplicated, sorted set of strings found for one category.
type Matches struct {
	Category patterns.Name
	Items    []string
}

// Count returns the number of unique matches.
func (m Matches) Count() int { return len(m.Items) }

// Result holds one Matches entry per category, in table order. A Result
// produced by Extract always covers every category; categories without hits
// carry an empty, non-nil slice.
type Result struct {
	entries []Matches
}

// Categories returns the per-category matches in display order.
func (r Result) Categories() []Matches {
	out := make([]Matches, len(r.entries))
	copy(out, r.entries)
	return out
}

// Get returns the matches for the named category, or nil when the category is
// unknown.
func (r Result) Get(name patterns.Name) []string {
	for _, e := range r.entries {
		if e.Category == name {
			return e.Items
		}
	}
	return nil
}

// Empty reports whether no category has any match.
func (r Result) Empty() bool {
	return r.Total() == 0
}

// Total is the number of unique matches across all categories.
func (r Result) Total() int {
	n := 0
	for _, e := range r.entries {
		n += len(e.Items)
	}
	return n
}

// Extract runs every category of the pattern table over text.
func Extract(text string) Result {
	cats := patterns.All()
	res := Result{entries: make([]Matches, 0, len(cats))}
	for _, c := range cats {
		res.entries = append(res.entries, Matches{Category: c.Name, Items: matchCategory(c, text)})
	}
	return res
}

// NewResult builds a Result from pre-computed items, normalizing each list the
// same way Extract does. Categories missing from items are present but empty;
// names outside the pattern table are dropped.
func NewResult(items map[patterns.Name][]string) Result {
	names := patterns.Names()
	res := Result{entries: make([]Matches, 0, len(names))}
	for _, name := range names {
		seen := make(map[string]struct{})
		for _, s := range items[name] {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
		res.entries = append(res.entries, Matches{Category: name, Items: sortedSet(seen)})
	}
	return res
}

func matchCategory(c patterns.Category, text string) []string {
	seen := make(map[string]struct{})
	for _, m := range c.Pattern.FindAllStringSubmatch(text, -1) {
		s := c.Select(m)
		if s == "" {
			continue
		}
		seen[s] = struct{}{}
	}
	return sortedSet(seen)
}

func sortedSet(seen map[string]struct{}) []string {
	items := make([]string, 0, len(seen))
	for s := range seen {
		items = append(items, s)
	}
	// Go string comparison is byte-wise, which equals code point order for UTF-8.
	sort.Strings(items)
	return items
}
