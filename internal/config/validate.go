package config

import (
	"fmt"
	"net/url"
	"strings"

	"dossier/internal/submit"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// ExportFormats lists the accepted export.formats values.
var ExportFormats = []string{"md", "html", "pdf"}

// Validate checks a normalized config.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if parsed, err := url.Parse(cfg.Server.BaseURL); err != nil || parsed.Host == "" {
		add("server.base_url", fmt.Sprintf("invalid url %q", cfg.Server.BaseURL))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		add("server.base_url", fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
	}
	if cfg.Server.Timeout < 0 {
		add("server.timeout", "must be >= 0")
	}
	if _, err := submit.ParseTone(cfg.Research.Tone); err != nil {
		add("research.tone", err.Error())
	}
	switch cfg.UI.Mode {
	case "auto", "live", "plain":
	default:
		add("ui.mode", fmt.Sprintf("unsupported mode %q (expected auto, live, or plain)", cfg.UI.Mode))
	}
	if cfg.UI.CollapseDelay < 0 {
		add("ui.collapse_delay", "must be >= 0")
	}
	if cfg.UI.BriefingsCollapseDelay < 0 {
		add("ui.briefings_collapse_delay", "must be >= 0")
	}
	for i, format := range cfg.Export.Formats {
		if !validFormat(format) {
			add(fmt.Sprintf("export.formats[%d]", i), fmt.Sprintf("unsupported format %q", format))
		}
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", fmt.Sprintf("unsupported level %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		add("log.format", fmt.Sprintf("unsupported format %q", cfg.Log.Format))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validFormat(format string) bool {
	for _, known := range ExportFormats {
		if format == known {
			return true
		}
	}
	return false
}
