package config

import (
	"strings"
	"time"
)

// Defaults applied by Normalize.
const (
	DefaultBaseURL                = "http://localhost:8000"
	DefaultTimeout                = 30 * time.Second
	DefaultTone                   = "Objective"
	DefaultUIMode                 = "auto"
	DefaultCollapseDelay          = time.Second
	DefaultBriefingsCollapseDelay = 2 * time.Second
	DefaultExportDir              = "."
	DefaultLogLevel               = "warn"
	DefaultLogFormat              = "console"
)

func Normalize(cfg *Config) {
	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Server.BaseURL), "/")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = DefaultBaseURL
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.Research.Tone) == "" {
		cfg.Research.Tone = DefaultTone
	}
	cfg.UI.Mode = strings.ToLower(strings.TrimSpace(cfg.UI.Mode))
	if cfg.UI.Mode == "" {
		cfg.UI.Mode = DefaultUIMode
	}
	if cfg.UI.CollapseDelay == 0 {
		cfg.UI.CollapseDelay = DefaultCollapseDelay
	}
	if cfg.UI.BriefingsCollapseDelay == 0 {
		cfg.UI.BriefingsCollapseDelay = DefaultBriefingsCollapseDelay
	}
	if strings.TrimSpace(cfg.Export.Dir) == "" {
		cfg.Export.Dir = DefaultExportDir
	}
	formats := make([]string, 0, len(cfg.Export.Formats))
	seen := map[string]bool{}
	for _, format := range cfg.Export.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" || seen[format] {
			continue
		}
		seen[format] = true
		formats = append(formats, format)
	}
	cfg.Export.Formats = formats
	cfg.Journal.Path = strings.TrimSpace(cfg.Journal.Path)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
