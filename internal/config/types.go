package config

import "time"

// Config is the parsed .dossier.yml file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Research ResearchConfig `yaml:"research"`
	UI       UIConfig       `yaml:"ui"`
	Export   ExportConfig   `yaml:"export"`
	Journal  JournalConfig  `yaml:"journal"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ResearchConfig struct {
	Tone string `yaml:"tone"`
}

type UIConfig struct {
	Mode                   string        `yaml:"mode"`
	NoColor                bool          `yaml:"no_color"`
	CollapseDelay          time.Duration `yaml:"collapse_delay"`
	BriefingsCollapseDelay time.Duration `yaml:"briefings_collapse_delay"`
}

type ExportConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

// JournalConfig enables the event journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}
