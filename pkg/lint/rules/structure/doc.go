// Package structure registers the NS rules: front matter completeness and
// navigation hierarchy integrity.
package structure
