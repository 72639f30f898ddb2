// Package lint checks the documentation corpus for integrity problems.
//
// # Architecture
//
// Rules are plain data (RuleDef) registered from init() functions in the
// packages under pkg/lint/rules. Each rule receives a Context holding the
// loaded corpus, its navigation tree and, optionally, the framework catalog,
// and returns Diagnostics. The Analyzer runs every enabled rule and applies
// severity overrides from configuration.
//
// # Rule Registration
//
//	import _ "github.com/leapstack-labs/wadocs/pkg/lint/rules"
//
// # Rule Groups
//
//   - NS (structure): front matter and navigation hierarchy
//   - LK (links): internal links and permalinks
//   - CT (content): leftovers from templates and generators
//   - CA (catalog): coverage against the framework catalog
//
// # Configuration
//
//	cfg := lint.NewConfig()
//	cfg.Disable("NS08")
//	cfg.SetSeverity("NS05", core.SeverityError)
//	cfg.SetRuleOptions("NS02", map[string]any{"allowed_layouts": []string{"default", "home"}})
package lint
