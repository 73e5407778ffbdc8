package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/table"

	"dossier/internal/journal"
)

// runJournal builds the handler for the journal command.
func runJournal(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to .dossier.yml (default: search upward)")
		jobID := flags.String("job", "", "Show the events of one job")
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		j, err := journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			fmt.Fprintf(stderr, "Journal failed: %v\n", err)
			return ExitError
		}
		defer j.Close()

		if *jobID != "" {
			entries, err := j.Events(ctx, *jobID)
			if err != nil {
				fmt.Fprintf(stderr, "Journal failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintln(stdout, renderEntries(entries))
			return ExitOK
		}
		jobs, err := j.Jobs(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Journal failed: %v\n", err)
			return ExitError
		}
		if len(jobs) == 0 {
			fmt.Fprintln(stdout, "No journaled jobs.")
			return ExitOK
		}
		fmt.Fprintln(stdout, renderJobs(jobs))
		return ExitOK
	}
}

func renderJobs(jobs []journal.JobSummary) string {
	t := table.New().Headers("JOB", "COMPANY", "STATUS", "STARTED", "EVENTS")
	for _, job := range jobs {
		t.Row(job.JobID, job.Company, job.Status, job.StartedAt.Local().Format(time.DateTime), fmt.Sprint(job.Events))
	}
	return t.String()
}

func renderEntries(entries []journal.Entry) string {
	t := table.New().Headers("SEQ", "KIND", "RECEIVED", "PAYLOAD")
	for _, entry := range entries {
		t.Row(fmt.Sprint(entry.Seq), entry.Kind, entry.ReceivedAt.Local().Format(time.TimeOnly), truncatePayload(entry.Payload, 80))
	}
	return t.String()
}

func truncatePayload(payload string, limit int) string {
	runes := []rune(payload)
	if len(runes) <= limit {
		return payload
	}
	return string(runes[:limit-3]) + "..."
}
