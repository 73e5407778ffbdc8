package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"dossier/internal/config"
)

// displayMode is how a streaming command presents a job.
type displayMode struct {
	live    bool
	noColor bool
	// muteLogs is set when the live UI owns the terminal and no log file
	// is configured.
	muteLogs bool
	warning  string
}

var (
	isTerminal = terminalWriter
	lookupEnv  = os.LookupEnv
)

// chooseDisplay resolves the ui mode from config, the --ui override and
// --verbose. Verbose always streams plain lines next to debug logs.
func chooseDisplay(cfg config.Config, override string, verbose bool, stdout io.Writer) (displayMode, error) {
	mode := cfg.UI.Mode
	if override != "" {
		mode = override
	}
	choice := displayMode{noColor: cfg.UI.NoColor || noColorEnv()}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		choice.live = !verbose && isTerminal(stdout)
	case "live":
		switch {
		case verbose:
		case isTerminal(stdout):
			choice.live = true
		default:
			choice.warning = "Live UI requested but stdout is not a TTY; falling back to plain output."
		}
	case "plain":
	default:
		return displayMode{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
	choice.muteLogs = choice.live && cfg.Log.File == ""
	return choice, nil
}

// noColorEnv follows the NO_COLOR convention: any non-empty value disables color.
func noColorEnv() bool {
	value, ok := lookupEnv("NO_COLOR")
	return ok && value != ""
}

func terminalWriter(w io.Writer) bool {
	fd, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(fd.Fd()))
}
