package lint

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultDocsBaseURL is where rule documentation pages live.
const DefaultDocsBaseURL = "https://wadocs.dev/rules"

var (
	docsMu      sync.RWMutex
	docsBaseURL = DefaultDocsBaseURL
)

// BuildDocURL constructs a documentation URL for a rule.
func BuildDocURL(ruleID string) string {
	docsMu.RLock()
	defer docsMu.RUnlock()
	return fmt.Sprintf("%s/%s", docsBaseURL, strings.ToLower(ruleID))
}

// SetDocsBaseURL overrides the documentation base URL, e.g. for a site
// hosted alongside the docs it checks.
func SetDocsBaseURL(url string) {
	docsMu.Lock()
	defer docsMu.Unlock()
	if url == "" {
		docsBaseURL = DefaultDocsBaseURL
		return
	}
	docsBaseURL = strings.TrimSuffix(url, "/")
}
