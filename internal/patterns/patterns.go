package patterns

import "regexp"

// Name identifies one of the fixed extraction categories.
type Name string

const (
	// Emails matches mailbox addresses such as a@b.com
	Emails Name = "Emails"
	// URLs matches http and https links
	URLs Name = "URLs"
	// PhoneNumbers matches North American style 10-digit numbers
	PhoneNumbers Name = "Phone Numbers"
	// CreditCards matches four groups of four digits
	CreditCards Name = "Credit Cards"
	// Times matches 12-hour (with AM/PM) and 24-hour clock times
	Times Name = "Times"
)

// Rule selects the reported text from a single submatch slice as returned by
// regexp.FindAllStringSubmatch. An empty return value means "no usable match".
type Rule func(submatch []string) string

// WholeMatch reports the entire matched text.
func WholeMatch(submatch []string) string {
	if len(submatch) == 0 {
		return ""
	}
	return submatch[0]
}

// FirstGroup reports the first non-empty capture group. Patterns using it
// wrap every alternative in its own outer group so the group holds the full
// candidate rather than a fragment of it.
func FirstGroup(submatch []string) string {
	if len(submatch) < 2 {
		return ""
	}
	for _, g := range submatch[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// Category pairs a name with its compiled pattern and selection rule.
type Category struct {
	Name    Name
	Pattern *regexp.Regexp
	Rule    Rule
}

// Select applies the category rule to one submatch.
func (c Category) Select(submatch []string) string {
	if c.Rule == nil {
		return WholeMatch(submatch)
	}
	return c.Rule(submatch)
}

// space widens RE2's ASCII-only \s to the Unicode white space found in pasted
// text (vertical tab, NBSP, the other Z separators).
const space = `\s\v\x1c-\x1f\x{85}\p{Z}`

// table is built once and never modified; callers only ever receive copies.
var table = []Category{
	{
		Name:    Emails,
		Pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Rule:    WholeMatch,
	},
	{
		Name:    URLs,
		Pattern: regexp.MustCompile(`https?://[^` + space + `<>"]+`),
		Rule:    WholeMatch,
	},
	{
		Name:    PhoneNumbers,
		Pattern: regexp.MustCompile(`(\(?\d{3}\)?[-.` + space + `]?\d{3}[-.` + space + `]?\d{4})`),
		Rule:    FirstGroup,
	},
	{
		Name:    CreditCards,
		Pattern: regexp.MustCompile(`\b(?:\d{4}[-` + space + `]?){3}\d{4}\b`),
		Rule:    WholeMatch,
	},
	{
		Name: Times,
		// 12-hour alternative first; Go's leftmost-first alternation keeps it
		// ahead of the 24-hour one at the same position.
		// The 24-hour branch has its own outer group so FirstGroup yields the
		// whole HH:MM rather than just the hour.
		Pattern: regexp.MustCompile(`(?i)\b((1[0-2]|0?[1-9]):[0-5][0-9][` + space + `]?(AM|PM))\b|\b(([01]?[0-9]|2[0-3]):[0-5][0-9])\b`),
		Rule:    FirstGroup,
	},
}

// All returns the categories in display order.
func All() []Category {
	out := make([]Category, len(table))
	copy(out, table)
	return out
}

// Names returns the category names in display order.
func Names() []Name {
	out := make([]Name, 0, len(table))
	for _, c := range table {
		out = append(out, c.Name)
	}
	return out
}

// Lookup finds a category by name. Matching is exact.
func Lookup(name Name) (Category, bool) {
	for _, c := range table {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
