package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  dossier <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"dossier <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("research", "Submit a company research job and follow its progress", []string{
		"dossier research --company <name> [--url <url>] [--industry <industry>] [--hq <location>]",
		"                 [--competitor <name>]... [--tone <tone>] [--ui auto|live|plain] [--export md,html,pdf]",
	}, runResearch),
	command("watch", "Follow the progress of an existing job", []string{
		"dossier watch <job-id> [--ui auto|live|plain] [--export md,html,pdf]",
	}, runWatch),
	command("report", "Fetch the final report of a job", []string{
		"dossier report <job-id> [--export md,html,pdf] [--out <dir>]",
	}, runReport),
	command("journal", "List journaled jobs or the events of one job", []string{
		"dossier journal [--job <job-id>]",
	}, runJournal),
	command("serve", "Browse journaled jobs and reports over HTTP", []string{
		"dossier serve [--addr <host:port>]",
	}, runServe),
	command("init", "Scaffold .dossier.yml", []string{
		"dossier init [--config <path>]",
	}, runInit),
	command("validate", "Validate .dossier.yml", []string{
		"dossier validate [--config <path>]",
	}, runValidate),
}
