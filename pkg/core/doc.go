// Package core defines the shared vocabulary of wadocs.
//
// This package contains:
//   - Lint severities and rule metadata (Severity, RuleInfo)
//   - Configuration types shared by the CLI and library packages (LintConfig, SiteConfig)
//   - Link style conventions for pillar and best-practice pages (LinkStyle)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
