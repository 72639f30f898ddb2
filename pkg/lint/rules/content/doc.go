// Package content registers the CT rules for page body hygiene.
package content
