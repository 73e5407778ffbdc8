package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/sync/errgroup"

	"dossier/internal/config"
	"dossier/internal/export"
	"dossier/internal/progress"
	"dossier/internal/session"
	"dossier/internal/ui/live"
	"dossier/internal/ui/plain"
)

var (
	errUIClosed = errors.New("ui closed")
	errJobReset = errors.New("job abandoned")
)

// display is implemented by the live controller and the plain printer.
type display interface {
	session.Observer
	OnJobStart(jobID, company string)
	OnNotice(message string)
	OnJobEnd(err error)
}

// startLive launches the live UI; tests replace it.
var startLive = func(stdout io.Writer, opts live.Options) liveUI {
	return live.Start(stdout, opts)
}

// liveUI is the part of live.Controller the CLI drives.
type liveUI interface {
	display
	Close()
	Wait()
}

// streamOptions are the flags shared by research and watch.
type streamOptions struct {
	configPath string
	uiMode     string
	exports    string
	outDir     string
	verbose    bool
}

// signalContext cancels on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// prepareStream loads config and decides the display mode.
func prepareStream(opts streamOptions, stdout, stderr io.Writer) (config.Config, displayMode, int, bool) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config:\n%v\n", err)
		return config.Config{}, displayMode{}, ExitError, false
	}
	choice, err := chooseDisplay(cfg, opts.uiMode, opts.verbose, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return config.Config{}, displayMode{}, ExitUsage, false
	}
	if choice.warning != "" {
		fmt.Fprintln(stderr, choice.warning)
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if opts.exports != "" {
		cfg.Export.Formats = splitList(strings.ToLower(opts.exports))
	}
	if opts.outDir != "" {
		cfg.Export.Dir = opts.outDir
	}
	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(stderr, "Invalid options:\n%v\n", err)
		return config.Config{}, displayMode{}, ExitUsage, false
	}
	return cfg, choice, ExitOK, true
}

// followJob streams the current job to a display and exports the report.
// With the live UI it returns once the user quits. The live reset key
// abandons the job and closes its stream.
func followJob(ctx context.Context, rt *runtime, mode displayMode, jobID, company string, stdout, stderr io.Writer) int {
	group, groupCtx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancelCause(groupCtx)
	defer cancelRun(nil)

	var ui display
	var controller liveUI
	if mode.live {
		controller = startLive(stdout, live.Options{
			NoColor: mode.noColor,
			OnReset: func() { cancelRun(errJobReset) },
		})
		ui = controller
	} else {
		ui = plain.New(stdout)
	}
	ui.OnJobStart(jobID, company)

	var final progress.State
	abandoned := false
	group.Go(func() error {
		err := rt.session.Run(runCtx, ui)
		if err != nil && errors.Is(context.Cause(runCtx), errJobReset) {
			abandoned = true
			rt.session.Reset()
			ui.OnJobEnd(errJobReset)
			ui.OnNotice("Job " + jobID + " abandoned; press q to quit")
			return errJobReset
		}
		final = rt.session.Snapshot()
		ui.OnJobEnd(jobError(final, err))
		if err == nil && final.Error == "" {
			exportReport(groupCtx, rt, final, ui)
		}
		if controller == nil {
			return err
		}
		if err != nil && ctx.Err() != nil {
			controller.Close()
			return err
		}
		rt.session.ForwardActions(groupCtx, ui)
		return nil
	})
	if controller != nil {
		group.Go(func() error {
			controller.Wait()
			return errUIClosed
		})
	}
	err := group.Wait()
	if controller != nil {
		controller.Close()
	}
	switch {
	case abandoned:
		fmt.Fprintf(stderr, "Research abandoned: job %s\n", jobID)
		return ExitError
	case err != nil && !errors.Is(err, errUIClosed):
		fmt.Fprintf(stderr, "Research interrupted: %v\n", err)
		return ExitError
	case final.Error != "":
		if controller != nil {
			fmt.Fprintf(stderr, "Research failed: %s\n", final.Error)
		}
		return ExitError
	case !final.Terminal:
		fmt.Fprintln(stderr, "Research interrupted before completion.")
		return ExitError
	}
	return ExitOK
}

// jobError describes why a stream ended without a report.
func jobError(state progress.State, runErr error) error {
	if state.Error != "" {
		return errors.New(state.Error)
	}
	return runErr
}

// exportReport writes the final report in each configured format.
func exportReport(ctx context.Context, rt *runtime, state progress.State, ui display) {
	company := state.Company
	if company == "" {
		company = rt.session.Company()
	}
	for _, message := range writeExports(ctx, rt, company, state.Report) {
		ui.OnNotice(message)
	}
}

// writeExports writes each configured format and returns one line per result.
func writeExports(ctx context.Context, rt *runtime, company, report string) []string {
	var messages []string
	for _, format := range rt.cfg.Export.Formats {
		var path string
		var err error
		switch format {
		case "md":
			path, err = export.WriteMarkdown(rt.cfg.Export.Dir, company, report)
		case "html":
			path, err = export.WriteHTML(ctx, rt.cfg.Export.Dir, company, report)
		case "pdf":
			path, err = rt.pdf.WritePDF(ctx, rt.cfg.Export.Dir, company, report)
		default:
			err = fmt.Errorf("unsupported export format %q", format)
		}
		if err != nil {
			messages = append(messages, fmt.Sprintf("Export %s failed: %v", format, err))
			continue
		}
		messages = append(messages, "Saved "+path)
	}
	return messages
}
