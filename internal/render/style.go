package render

import (
	"fmt"
	"strings"
)

// Style represents the supported HTML presentation variants
type Style string

const (
	// List renders each category as a heading followed by a bulleted list
	List Style = "list"
	// Pre renders the plain text report in a preformatted block with a
	// client-side download button
	Pre Style = "pre"
)

// Profile describes one presentation variant
type Profile struct {
	Style       Style
	Name        string
	Description string
}

// GetProfile returns the profile for the given style name, falling back to
// the list profile for unknown input.
func GetProfile(style string) Profile {
	switch Style(normalizeStyle(style)) {
	case Pre:
		return preProfile()
	default:
		return listProfile()
	}
}

// ParseStyle is the strict counterpart of GetProfile used for configuration
// validation: unknown names are rejected instead of defaulted.
func ParseStyle(style string) (Style, error) {
	v := normalizeStyle(style)
	if v == "" {
		return "", fmt.Errorf("render: unknown style %q (want %q or %q)", style, List, Pre)
	}
	return Style(v), nil
}

// normalizeStyle converts string input to canonical Style value, or "" when
// the input is not recognized
func normalizeStyle(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "list", "ul", "bullets", "bulleted", "bulleted list":
		return string(List)
	case "pre", "preformatted", "block", "text", "download":
		return string(Pre)
	default:
		return ""
	}
}

func listProfile() Profile {
	return Profile{
		Style:       List,
		Name:        "Bulleted list",
		Description: "One heading per category with its unique matches as list items",
	}
}

func preProfile() Profile {
	return Profile{
		Style:       Pre,
		Name:        "Preformatted block",
		Description: "Plain text report in a <pre> block with a download button",
	}
}
