// Package config loads wadocs configuration.
//
// Settings come from defaults, a wadocs.yaml file found in or above the
// working directory, WADOCS_ environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/wadocs/pkg/core"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = core.LintConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// SiteConfig is an alias for the shared site configuration.
type SiteConfig = core.SiteConfig

// Config holds all CLI configuration options.
type Config struct {
	DocsDir      string         `koanf:"docs_dir"`
	OutputDir    string         `koanf:"output_dir"`
	StatePath    string         `koanf:"state_path"`
	Catalog      string         `koanf:"catalog"` // empty uses the embedded catalog
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`
	Site         SiteConfig     `koanf:"site"`
	Lint         *LintConfig    `koanf:"lint"`
	Serve        ServeConfig    `koanf:"serve"`
	Upstream     UpstreamConfig `koanf:"upstream"`
	Publish      PublishConfig  `koanf:"publish"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// ServeConfig holds settings for the development server.
type ServeConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// UpstreamConfig points at the published framework.
type UpstreamConfig struct {
	AppendixURL string        `koanf:"appendix_url"`
	QuestionURL string        `koanf:"question_url"`
	Timeout     time.Duration `koanf:"timeout"`
}

// PublishConfig holds the S3 publishing target.
type PublishConfig struct {
	Bucket       string `koanf:"bucket"`
	Prefix       string `koanf:"prefix"`
	Region       string `koanf:"region"`
	Profile      string `koanf:"profile"`
	Endpoint     string `koanf:"endpoint"`
	CacheControl string `koanf:"cache_control"`
	Prune        bool   `koanf:"prune"`
}

// Default configuration values.
const (
	DefaultDocsDir   = "docs"
	DefaultOutputDir = "_site"
	DefaultStateFile = ".wadocs/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSiteTitle = "AWS Well-Architected Framework"
	DefaultPort      = 4000
)

// ConfigFileNames are the names searched for, in order.
var ConfigFileNames = []string{"wadocs.yaml", "wadocs.yml"}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		DocsDir:      DefaultDocsDir,
		OutputDir:    DefaultOutputDir,
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		Site: SiteConfig{
			Title:          DefaultSiteTitle,
			AllowedLayouts: []string{"default"},
			LinkStyle:      core.DefaultLinkStyle,
		},
		Serve:    ServeConfig{Port: DefaultPort, Watch: true},
		Upstream: UpstreamConfig{Timeout: 30 * time.Second},
	}
}

// LinkStyle returns the configured link style, falling back to the default.
func (c *Config) LinkStyle() core.LinkStyle {
	if s, err := core.ParseLinkStyle(string(c.Site.LinkStyle)); err == nil {
		return s
	}
	return core.DefaultLinkStyle
}
