package config

import (
	"fmt"
	"net/url"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/leapstack-labs/wadocs/pkg/core"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DocsDir, validation.Required.Error("docs_dir is required")),
		validation.Field(&c.OutputDir, validation.Required.Error("output_dir is required")),
		validation.Field(&c.OutputFormat,
			validation.In("", "auto", "text", "markdown", "md", "json").Error("output must be auto, text, markdown or json")),
		validation.Field(&c.Site, validation.By(validateSite)),
		validation.Field(&c.Serve),
		validation.Field(&c.Upstream),
	)
}

func validateSite(value any) error {
	site, _ := value.(SiteConfig)
	if _, err := core.ParseLinkStyle(string(site.LinkStyle)); err != nil {
		return validation.NewError("config.site.link_style", err.Error())
	}
	if site.Workers < 0 {
		return validation.NewError("config.site.workers", "site.workers must not be negative")
	}
	if site.BaseURL != "" {
		if _, err := url.Parse(site.BaseURL); err != nil {
			return validation.NewError("config.site.base_url", fmt.Sprintf("site.base_url is invalid: %v", err))
		}
	}
	return nil
}

// Validate checks the server port.
func (s ServeConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
	)
}

// Validate checks the upstream URLs.
func (u UpstreamConfig) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.AppendixURL, validation.By(absoluteURL)),
		validation.Field(&u.Timeout, validation.Min(0)),
	)
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return validation.NewError("config.url", "must be an absolute URL")
	}
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.DocsDir); os.IsNotExist(err) {
		return fmt.Errorf("docs directory does not exist: %s\nHint: Create the directory or use --docs-dir to specify a different path", c.DocsDir)
	}
	return nil
}
