// Package rules registers every built-in lint rule. Import it for its side
// effects.
package rules

import (
	// Each package registers its rules in init.
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules/catalogrules"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules/content"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules/links"
	_ "github.com/leapstack-labs/wadocs/pkg/lint/rules/structure"
)
