// Command imauth-log views and analyzes login attempt logs.
//
// Log files are written by imlogin when run with -protocol-log.
//
// Usage:
//
//	imauth-log <command> [flags] <file.alog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View outcomes only
//	imauth-log view -category outcome attempts.alog
//
//	# Show one attempt
//	imauth-log view -attempt 3f2a91c0 attempts.alog
//
//	# Export to CSV
//	imauth-log export -format csv -o attempts.csv attempts.alog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/imdesk/imclient/cmd/imauth-log/commands"
)

const usage = `imauth-log - login attempt log analyzer

Usage:
  imauth-log <command> [flags] <file.alog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "imauth-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// newFlagSet builds a flag set whose usage text names the command.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "imauth-log %s - %s\n\nUsage:\n  imauth-log %s [flags] <file.alog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// logPath parses args and returns the single positional argument.
func logPath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := newFlagSet("view", "view log file in human-readable format")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, session)")
	direction := fs.String("direction", "", "Filter frames by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, state, outcome, error)")
	attempt := fs.String("attempt", "", "Filter by attempt ID prefix")
	path := logPath(fs, args)

	filter := commands.ViewFilter{AttemptID: *attempt}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "export log file to JSONL or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := logPath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "filter log file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	attempt := fs.String("attempt", "", "Filter by attempt ID prefix")
	user := fs.String("user", "", "Filter by username")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, session)")
	category := fs.String("category", "", "Filter by category (message, state, outcome, error)")
	outcome := fs.String("outcome", "", "Keep attempts by outcome (success, rejected, transport_error, timeout, ...)")
	path := logPath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		AttemptID: *attempt,
		Username:  *user,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Category:  *category,
		Outcome:   *outcome,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "show statistics about the log file")
	path := logPath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
