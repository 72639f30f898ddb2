package lint

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/wadocs/pkg/core"
)

// Re-exported severities so rule packages need only import lint.
const (
	SeverityError   = core.SeverityError
	SeverityWarning = core.SeverityWarning
	SeverityInfo    = core.SeverityInfo
	SeverityHint    = core.SeverityHint
)

// Severity is an alias for core.Severity.
type Severity = core.Severity

// ParseSeverity is re-exported from core.
var ParseSeverity = core.ParseSeverity

// Check is the function signature for rule checks.
type Check func(ctx *Context) []Diagnostic

// RuleDef is a rule definition.
type RuleDef struct {
	ID          string   // Unique identifier, e.g., "NS03"
	Name        string   // Human-readable name, e.g., "unresolved-parent"
	Group       string   // Category: "structure", "links", "content", "catalog"
	Description string   // Human-readable description
	Severity    Severity // Default severity
	Check       Check    // The check function
	ConfigKeys  []string // Configuration keys this rule accepts
	AutoFixable bool     // Whether `wadocs fix` can repair findings

	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// Info converts the definition into its documentation DTO.
func (r RuleDef) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		ConfigKeys:      r.ConfigKeys,
		AutoFixable:     r.AutoFixable,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		Fix:             r.Fix,
	}
}

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID           string   `json:"rule_id"`
	Severity         Severity `json:"severity"`
	Message          string   `json:"message"`
	Path             string   `json:"path"`
	Line             int      `json:"line,omitempty"`
	DocumentationURL string   `json:"documentation_url,omitempty"`
	AutoFixable      bool     `json:"auto_fixable,omitempty"`
}

// globalRegistry is the single registry for lint rules.
var globalRegistry = &registry{
	rules: make(map[string]RuleDef),
}

type registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule
}

// GetAll returns all registered rules ordered by ID.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// GetByID returns a rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// GetByGroup returns all rules in a specific group ordered by ID.
func GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if rule.Group == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]RuleDef)
}

// AllRules returns documentation for every registered rule.
func AllRules() []core.RuleInfo {
	defs := GetAll()
	infos := make([]core.RuleInfo, len(defs))
	for i, d := range defs {
		infos[i] = d.Info()
	}
	return infos
}
