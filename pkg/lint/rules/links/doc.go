// Package links registers the LK rules for internal link integrity.
package links
