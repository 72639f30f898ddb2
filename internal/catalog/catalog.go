// Package catalog describes the Well-Architected Framework pillars, their
// review questions and best practices. A default catalog is embedded; a
// project may supply its own YAML file with the same shape.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/leapstack-labs/wadocs/pkg/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// QuestionIDPattern matches question IDs such as COST02.
	QuestionIDPattern = regexp.MustCompile(`^([A-Z]+)(\d{2})$`)
	// BestPracticeIDPattern matches best-practice IDs such as COST02-BP03.
	BestPracticeIDPattern = regexp.MustCompile(`^(([A-Z]+)\d{2})-BP(\d{2})$`)
)

// Catalog is the ordered list of pillars.
type Catalog struct {
	Pillars []Pillar `yaml:"pillars"`
}

// Pillar is one of the framework pillars.
type Pillar struct {
	Name        string     `yaml:"name"`
	Abbr        string     `yaml:"abbr"`
	Dir         string     `yaml:"dir"`
	NavOrder    int        `yaml:"nav_order"`
	Description string     `yaml:"description"`
	KeyAreas    []KeyArea  `yaml:"key_areas"`
	Services    []Service  `yaml:"services"`
	Resources   []Resource `yaml:"resources"`
	Questions   []Question `yaml:"questions"`
}

// KeyArea is a focus area listed on a pillar index page.
type KeyArea struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Service is an AWS service recommended for a pillar.
type Service struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Resource is an external reading link.
type Resource struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Question is a review question, e.g. COST02.
type Question struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	BestPractices []BestPractice `yaml:"best_practices"`
}

// BestPractice is a best practice under a question, e.g. COST02-BP03.
type BestPractice struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// PageTitle is the front matter title of the question page.
func (q Question) PageTitle() string {
	return q.ID + " - " + q.Title
}

// PageTitle is the front matter title of the best-practice page.
func (bp BestPractice) PageTitle() string {
	return bp.ID + " - " + bp.Title
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // user supplied catalog path
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML. Pillars without a dir get one
// derived from their name.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for i := range c.Pillars {
		p := &c.Pillars[i]
		if p.Dir == "" && p.Name != "" {
			dir, err := DirFor(p.Name)
			if err != nil {
				return nil, fmt.Errorf("pillar %q: %w", p.Name, err)
			}
			p.Dir = dir
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DirFor derives a pillar directory name, e.g. "Cost Optimization" -> "cost-optimization".
func DirFor(name string) (string, error) {
	return slug.Normalize(name)
}

// NameFromDir derives a display name from a directory, e.g.
// "cost-optimization" -> "Cost Optimization".
func NameFromDir(dir string) string {
	words := strings.ReplaceAll(strings.Trim(dir, "/"), "-", " ")
	return cases.Title(language.English).String(words)
}

// Pillar finds a pillar by name, directory or abbreviation (case-insensitive).
func (c *Catalog) Pillar(key string) (*Pillar, bool) {
	key = strings.TrimSpace(key)
	for i := range c.Pillars {
		p := &c.Pillars[i]
		if strings.EqualFold(p.Name, key) || strings.EqualFold(p.Dir, key) || strings.EqualFold(p.Abbr, key) {
			return p, true
		}
	}
	return nil, false
}

// PillarForID returns the pillar owning a question or best-practice ID.
func (c *Catalog) PillarForID(id string) (*Pillar, bool) {
	prefix := IDPrefix(id)
	if prefix == "" {
		return nil, false
	}
	for i := range c.Pillars {
		if c.Pillars[i].Abbr == prefix {
			return &c.Pillars[i], true
		}
	}
	return nil, false
}

// Question looks up a question by ID.
func (c *Catalog) Question(id string) (*Pillar, *Question, bool) {
	p, ok := c.PillarForID(id)
	if !ok {
		return nil, nil, false
	}
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return p, &p.Questions[i], true
		}
	}
	return p, nil, false
}

// BestPractice looks up a best practice by ID.
func (c *Catalog) BestPractice(id string) (*Question, *BestPractice, bool) {
	m := BestPracticeIDPattern.FindStringSubmatch(id)
	if m == nil {
		return nil, nil, false
	}
	_, q, ok := c.Question(m[1])
	if !ok {
		return nil, nil, false
	}
	for i := range q.BestPractices {
		if q.BestPractices[i].ID == id {
			return q, &q.BestPractices[i], true
		}
	}
	return q, nil, false
}

// Question looks up a question within the pillar.
func (p *Pillar) Question(id string) (*Question, bool) {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i], true
		}
	}
	return nil, false
}

// IDPrefix returns the pillar abbreviation of a question or best-practice
// ID, or "" when id is neither.
func IDPrefix(id string) string {
	if m := QuestionIDPattern.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	if m := BestPracticeIDPattern.FindStringSubmatch(id); m != nil {
		return m[2]
	}
	return ""
}

// IsQuestionID reports whether id looks like COST02.
func IsQuestionID(id string) bool {
	return QuestionIDPattern.MatchString(id)
}

// IsBestPracticeID reports whether id looks like COST02-BP03.
func IsBestPracticeID(id string) bool {
	return BestPracticeIDPattern.MatchString(id)
}

// QuestionOf returns the question ID a best-practice ID belongs to.
func QuestionOf(bpID string) string {
	if m := BestPracticeIDPattern.FindStringSubmatch(bpID); m != nil {
		return m[1]
	}
	return ""
}

var abbrPattern = regexp.MustCompile(`^[A-Z]+$`)

var linkTargetPattern = regexp.MustCompile(`^(?:\./)?([A-Z]+\d{2}(?:-BP\d{2})?)(?:\.html)?$`)

// LinkTargetID returns the question or best-practice ID a sibling link
// points at, for targets like "COST02", "./COST02-BP01" or "COST02.html".
func LinkTargetID(target string) (string, bool) {
	m := linkTargetPattern.FindStringSubmatch(target)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CanonicalLink rewrites a sibling link to a question or best-practice page
// in the given style, keeping any fragment. ok is false when target is not
// such a link; changed reports whether the spelling differs.
func CanonicalLink(target string, style core.LinkStyle) (canonical string, changed, ok bool) {
	bare, frag := target, ""
	if i := strings.Index(target, "#"); i >= 0 {
		bare, frag = target[:i], target[i:]
	}
	id, ok := LinkTargetID(bare)
	if !ok {
		return target, false, false
	}
	canonical = style.Format(id) + frag
	return canonical, canonical != target, true
}
