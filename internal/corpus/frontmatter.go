package corpus

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the navigation metadata block at the top of every page.
// Field order matches the order keys are written back out.
type FrontMatter struct {
	Title       string         `yaml:"title,omitempty"`
	Layout      string         `yaml:"layout,omitempty"`
	Parent      string         `yaml:"parent,omitempty"`
	GrandParent string         `yaml:"grand_parent,omitempty"`
	NavOrder    *int           `yaml:"nav_order,omitempty"`
	HasChildren bool           `yaml:"has_children,omitempty"`
	Permalink   string         `yaml:"permalink,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// Order returns nav_order and whether it was set.
func (fm FrontMatter) Order() (int, bool) {
	if fm.NavOrder == nil {
		return 0, false
	}
	return *fm.NavOrder, true
}

// SetOrder sets nav_order.
func (fm *FrontMatter) SetOrder(n int) {
	fm.NavOrder = &n
}

// IntPtr is a convenience for building front matter literals.
func IntPtr(n int) *int {
	return &n
}

// splitFrontMatter decodes the leading front matter block of raw.
// It returns the remaining body and whether a block was present.
func splitFrontMatter(raw []byte) (FrontMatter, []byte, bool, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return FrontMatter{}, nil, false, err
	}
	return fm, body, len(body) != len(raw), nil
}

// encodeFrontMatter renders fm as a YAML block including its delimiters.
func encodeFrontMatter(fm FrontMatter) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}

	out := make([]byte, 0, buf.Len()+8)
	out = append(out, "---\n"...)
	out = append(out, buf.Bytes()...)
	out = append(out, "---\n"...)
	return out, nil
}
