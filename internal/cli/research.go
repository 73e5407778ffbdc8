package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"dossier/internal/session"
	"dossier/internal/submit"
)

// runResearch builds the handler for the research command.
func runResearch(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		var opts streamOptions
		var competitors stringList
		company := flags.String("company", "", "Company name (required)")
		companyURL := flags.String("url", "", "Company website")
		industry := flags.String("industry", "", "Industry")
		hq := flags.String("hq", "", "Headquarters location")
		tone := flags.String("tone", "", "Report tone (default: research.tone)")
		flags.Var(&competitors, "competitor", "Competitor name (repeatable)")
		flags.StringVar(&opts.configPath, "config", "", "Path to .dossier.yml (default: search upward)")
		flags.StringVar(&opts.uiMode, "ui", "", "Output mode: auto, live or plain")
		flags.StringVar(&opts.exports, "export", "", "Comma separated export formats: md, html, pdf")
		flags.StringVar(&opts.outDir, "out", "", "Export directory (default: export.dir)")
		flags.BoolVar(&opts.verbose, "verbose", false, "Plain output with debug logging")
		rest, code, ok := parseFlags(cmd, flags, args, stdout, stderr)
		if !ok {
			return code
		}
		if len(rest) > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(rest, " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if strings.TrimSpace(*company) == "" {
			fmt.Fprintln(stderr, "--company is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, mode, code, ok := prepareStream(opts, stdout, stderr)
		if !ok {
			return code
		}
		toneValue := cfg.Research.Tone
		if *tone != "" {
			toneValue = *tone
		}
		parsedTone, err := submit.ParseTone(toneValue)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}

		ctx, cancel := signalContext()
		defer cancel()
		rt, err := newRuntime(ctx, cfg, mode)
		if err != nil {
			fmt.Fprintf(stderr, "Startup failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		resp, err := rt.session.Submit(ctx, submit.Request{
			Company:     *company,
			CompanyURL:  *companyURL,
			Industry:    *industry,
			HQLocation:  *hq,
			Competitors: competitors,
			Tone:        parsedTone,
		})
		if err != nil {
			if session.IsSubmitError(err) {
				fmt.Fprintf(stderr, "Submission failed: %v\n", err)
			} else {
				fmt.Fprintf(stderr, "Research failed: %v\n", err)
			}
			return ExitError
		}
		return followJob(ctx, rt, mode, resp.JobID, strings.TrimSpace(*company), stdout, stderr)
	}
}
