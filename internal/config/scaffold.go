package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// scaffoldComments annotates keys of the starter config, addressed by their
// dotted path.
var scaffoldComments = map[string]string{
	"server.base_url":             "Research server that accepts POST /research and streams /research/{job_id}/stream.",
	"research.tone":               "Objective, Formal, Analytical, Persuasive, Informal or Critical",
	"ui.mode":                     "auto picks the live UI on a terminal; live or plain force one.",
	"ui.no_color":                 "NO_COLOR in the environment also disables color.",
	"export.formats":              "Any of md, html and pdf, written once a report completes.",
	"journal.path":                "Set to a DuckDB file such as .dossier/journal.duckdb to keep every event.",
	"log.file":                    "Logs go to stderr unless a file is set. The live UI mutes stderr logs.",
	"ui.briefings_collapse_delay": "Delay before the briefing checklist folds once all four are done.",
}

// ScaffoldConfig renders a commented starter config using the defaults.
func ScaffoldConfig(baseURL string) ([]byte, error) {
	cfg := Default()
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	cfg.Export.Formats = []string{}

	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	annotate(&root, "", scaffoldComments)
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "dossier research client. Check edits with `dossier validate`.",
		Content:     []*yaml.Node{&root},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// annotate walks a mapping node and sets the head comment of every key
// listed in comments.
func annotate(node *yaml.Node, prefix string, comments map[string]string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}
		if comment, ok := comments[path]; ok {
			key.HeadComment = comment
		}
		annotate(value, path, comments)
	}
}

// Scaffold writes a starter config to path. It refuses to overwrite.
func Scaffold(path, baseURL string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", path)
		}
		return fmt.Errorf("config file already exists at %q", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	content, err := ScaffoldConfig(baseURL)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
