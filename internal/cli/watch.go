package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// runWatch builds the handler for the watch command.
func runWatch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		var opts streamOptions
		flags.StringVar(&opts.configPath, "config", "", "Path to .dossier.yml (default: search upward)")
		flags.StringVar(&opts.uiMode, "ui", "", "Output mode: auto, live or plain")
		flags.StringVar(&opts.exports, "export", "", "Comma separated export formats: md, html, pdf")
		flags.StringVar(&opts.outDir, "out", "", "Export directory (default: export.dir)")
		flags.BoolVar(&opts.verbose, "verbose", false, "Plain output with debug logging")
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

		cfg, mode, code, ok := prepareStream(opts, stdout, stderr)
		if !ok {
			return code
		}
		ctx, cancel := signalContext()
		defer cancel()
		rt, err := newRuntime(ctx, cfg, mode)
		if err != nil {
			fmt.Fprintf(stderr, "Startup failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		if err := rt.session.Watch(ctx, jobID); err != nil {
			fmt.Fprintf(stderr, "Watch failed: %v\n", err)
			return ExitError
		}
		return followJob(ctx, rt, mode, jobID, "", stdout, stderr)
	}
}
