package lint

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/wadocs/internal/catalog"
	"github.com/leapstack-labs/wadocs/internal/corpus"
	"github.com/leapstack-labs/wadocs/internal/nav"
	"github.com/leapstack-labs/wadocs/pkg/core"
)

// Context provides the data rules inspect.
type Context struct {
	Corpus  *corpus.Corpus
	Tree    *nav.Tree
	Catalog *catalog.Catalog // nil disables catalog rules

	options map[string]core.RuleOptions
}

// NewContext builds a context, deriving the navigation tree from the corpus.
func NewContext(c *corpus.Corpus, cat *catalog.Catalog) *Context {
	return &Context{
		Corpus:  c,
		Tree:    nav.Build(c),
		Catalog: cat,
		options: make(map[string]core.RuleOptions),
	}
}

// WithOptions attaches rule options, usually from Config.RuleOptions.
func (c *Context) WithOptions(opts map[string]core.RuleOptions) *Context {
	for id, o := range opts {
		c.options[id] = o
	}
	return c
}

// Options returns the raw options for a rule.
func (c *Context) Options(ruleID string) core.RuleOptions {
	return c.options[ruleID]
}

// DecodeOptions decodes a rule's options into out, which should already
// hold the defaults. Keys use snake_case as written in wadocs.yaml.
func (c *Context) DecodeOptions(ruleID string, out any) error {
	raw := c.options[ruleID]
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "option",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(raw)); err != nil {
		return fmt.Errorf("%s options: %w", ruleID, err)
	}
	return nil
}

// Diag is a small helper for rules building diagnostics for a page.
func (c *Context) Diag(rule RuleDef, p *corpus.Page, line int, format string, args ...any) Diagnostic {
	return Diagnostic{
		RuleID:           rule.ID,
		Severity:         rule.Severity,
		Message:          fmt.Sprintf(format, args...),
		Path:             p.Path,
		Line:             line,
		DocumentationURL: BuildDocURL(rule.ID),
		AutoFixable:      rule.AutoFixable,
	}
}
