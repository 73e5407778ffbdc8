package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"dossier/internal/journal"
	"dossier/internal/reportserver"
)

const defaultServeAddr = "127.0.0.1:8787"

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to .dossier.yml (default: search upward)")
		addr := flags.String("addr", defaultServeAddr, "Listen address")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(rest, " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config:\n%v\n", err)
			return ExitError
		}
		if cfg.Journal.Path == "" {
			fmt.Fprintln(stderr, "No journal configured; set journal.path in .dossier.yml.")
			return ExitError
		}
		logger, err := newLogger(cfg, displayMode{})
		if err != nil {
			fmt.Fprintf(stderr, "Startup failed: %v\n", err)
			return ExitError
		}
		defer func() { _ = logger.Sync() }()

		ctx, cancel := signalContext()
		defer cancel()
		j, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			fmt.Fprintf(stderr, "Journal failed: %v\n", err)
			return ExitError
		}
		defer j.Close()

		fmt.Fprintf(stdout, "Serving journaled research on http://%s\n", *addr)
		if err := reportserver.Serve(ctx, reportserver.Config{
			Addr:   *addr,
			Jobs:   j,
			DBPath: cfg.Journal.Path,
			Logger: logger.Named("serve"),
		}); err != nil {
			fmt.Fprintf(stderr, "Serve failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
