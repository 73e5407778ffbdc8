package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"dossier/internal/config"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .dossier.yml)")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(rest, " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		resolved, err := resolveConfigPath(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		if resolved == "" {
			fmt.Fprintln(stderr, "Validation failed:\nno .dossier.yml found")
			return ExitError
		}
		cfg, err := loadConfig(resolved)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}

		fmt.Fprintf(stdout, "Config OK: %s\n", resolved)
		printEffectiveConfig(stdout, cfg)
		return ExitOK
	}
}

// printEffectiveConfig lists the settings a research run would use after
// defaults and environment overrides.
func printEffectiveConfig(out io.Writer, cfg config.Config) {
	journalPath := cfg.Journal.Path
	if journalPath == "" {
		journalPath = "off"
	}
	exports := "none"
	if len(cfg.Export.Formats) > 0 {
		exports = strings.Join(cfg.Export.Formats, ", ") + " into " + cfg.Export.Dir
	}
	fmt.Fprintf(out, "  server:  %s\n", cfg.Server.BaseURL)
	fmt.Fprintf(out, "  tone:    %s\n", cfg.Research.Tone)
	fmt.Fprintf(out, "  ui:      %s\n", cfg.UI.Mode)
	fmt.Fprintf(out, "  exports: %s\n", exports)
	fmt.Fprintf(out, "  journal: %s\n", journalPath)
}
