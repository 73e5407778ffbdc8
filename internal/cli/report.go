package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"dossier/internal/export"
)

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to .dossier.yml (default: search upward)")
		exports := flags.String("export", "", "Comma separated export formats: md, html, pdf")
		outDir := flags.String("out", "", "Export directory (default: export.dir)")
		company := flags.String("company", "", "Company name used for export file names")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
			fmt.Fprintln(stderr, "exactly one job id is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		jobID := strings.TrimSpace(rest[0])

		cfg, _, code, ok := prepareStream(streamOptions{
			configPath: *configPath,
			uiMode:     "plain",
			exports:    *exports,
			outDir:     *outDir,
		}, stdout, stderr)
		if !ok {
			return code
		}
		if *exports == "" {
			cfg.Export.Formats = nil
		}
		ctx, cancel := signalContext()
		defer cancel()
		rt, err := newRuntime(ctx, cfg, displayMode{})
		if err != nil {
			fmt.Fprintf(stderr, "Startup failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		report, err := rt.reports.Fetch(ctx, jobID)
		switch {
		case errors.Is(err, export.ErrReportPending):
			fmt.Fprintf(stderr, "Report for job %s is not ready yet.\n", jobID)
			return ExitError
		case errors.Is(err, export.ErrJobNotFound):
			fmt.Fprintf(stderr, "Job %s not found.\n", jobID)
			return ExitError
		case err != nil:
			fmt.Fprintf(stderr, "Report failed: %v\n", err)
			return ExitError
		}

		if len(cfg.Export.Formats) == 0 {
			fmt.Fprintln(stdout, strings.TrimRight(report, "\n"))
			return ExitOK
		}
		name := *company
		if name == "" {
			name = jobID
		}
		exitCode := ExitOK
		for _, message := range writeExports(ctx, rt, name, report) {
			if strings.HasPrefix(message, "Export ") {
				fmt.Fprintln(stderr, message)
				exitCode = ExitError
				continue
			}
			fmt.Fprintln(stdout, message)
		}
		return exitCode
	}
}
