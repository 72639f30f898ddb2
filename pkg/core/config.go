package core

import (
	"fmt"
	"strings"
)

// LintConfig holds lint rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// SiteConfig holds static site generation settings.
type SiteConfig struct {
	Title          string    `koanf:"title"`
	BaseURL        string    `koanf:"base_url"`
	AllowedLayouts []string  `koanf:"allowed_layouts"`
	LinkStyle      LinkStyle `koanf:"link_style"`
	Workers        int       `koanf:"workers"`
	Incremental    bool      `koanf:"incremental"`
}

// =============================================================================
// LinkStyle
// =============================================================================

// LinkStyle is the canonical spelling of links between pillar, question and
// best-practice pages.
type LinkStyle string

// Supported link styles.
const (
	// LinkStyleRelativeHTML renders links as ./COST01.html.
	LinkStyleRelativeHTML LinkStyle = "relative-html"
	// LinkStyleHTML renders links as COST01.html.
	LinkStyleHTML LinkStyle = "html"
	// LinkStyleRelative renders links as ./COST01.
	LinkStyleRelative LinkStyle = "relative"
)

// DefaultLinkStyle is used when no style is configured.
const DefaultLinkStyle = LinkStyleRelativeHTML

// ParseLinkStyle validates a link style name. An empty string yields the default.
func ParseLinkStyle(s string) (LinkStyle, error) {
	switch LinkStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultLinkStyle, nil
	case LinkStyleRelativeHTML:
		return LinkStyleRelativeHTML, nil
	case LinkStyleHTML:
		return LinkStyleHTML, nil
	case LinkStyleRelative:
		return LinkStyleRelative, nil
	default:
		return "", fmt.Errorf("unknown link style %q (want relative-html, html or relative)", s)
	}
}

// Format renders a page ID (e.g. "COST02-BP03") in this style.
func (s LinkStyle) Format(id string) string {
	switch s {
	case LinkStyleHTML:
		return id + ".html"
	case LinkStyleRelative:
		return "./" + id
	default:
		return "./" + id + ".html"
	}
}
