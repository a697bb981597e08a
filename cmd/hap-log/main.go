// Command hap-log is a tool for viewing and analyzing accessory trace files.
//
// Trace files are created by running hap-accessory with the -trace flag.
// They record every call between the accessories and the engine.
//
// Usage:
//
//	hap-log <command> [flags] <file.haplog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSON lines
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	hap-log view lamp.haplog
//
//	# View only controller accesses
//	hap-log view -layer controller -category access lamp.haplog
//
//	# View the events of one accessory
//	hap-log view -accessory AA:BB:CC:DD:EE:FF lamp.haplog
//
//	# Show statistics
//	hap-log stats lamp.haplog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hap-go/hap-go/cmd/hap-log/commands"
	"github.com/hap-go/hap-go/pkg/log"
)

const usage = `hap-log - Accessory Trace Analyzer

Usage:
  hap-log <command> [flags] <file.haplog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSON lines
  stats    Show statistics about the trace file

Use "hap-log <command> -help" for more information about a command.
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

// filterFlags registers the event filter flags shared by the commands.
type filterFlags struct {
	layer     *string
	direction *string
	category  *string
	accessory *string
	session   *string
}

func addFilterFlags(fs *flag.FlagSet) *filterFlags {
	return &filterFlags{
		layer:     fs.String("layer", "", "Filter by layer (engine, controller, bridge)"),
		direction: fs.String("direction", "", "Filter by direction (in, out)"),
		category:  fs.String("category", "", "Filter by category (registration, access, notification, error)"),
		accessory: fs.String("accessory", "", "Filter by accessory ID"),
		session:   fs.String("session", "", "Filter by engine session ID"),
	}
}

func (f *filterFlags) filter() (log.Filter, error) {
	filter := log.Filter{
		AccessoryID: *f.accessory,
		SessionID:   *f.session,
	}

	if *f.layer != "" {
		l, err := commands.ParseLayerFlag(*f.layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if *f.direction != "" {
		d, err := commands.ParseDirectionFlag(*f.direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if *f.category != "" {
		c, err := commands.ParseCategoryFlag(*f.category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	return filter, nil
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `hap-log view - View trace file in human-readable format

Usage:
  hap-log view [flags] <file.haplog>

Flags:
`)
		fs.PrintDefaults()
	}
	ff := addFilterFlags(fs)

	path := parseArgs(fs, args)
	filter, err := ff.filter()
	if err != nil {
		fatal(err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `hap-log export - Export trace file to JSON lines

Usage:
  hap-log export [flags] <file.haplog>

Flags:
`)
		fs.PrintDefaults()
	}
	ff := addFilterFlags(fs)
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parseArgs(fs, args)
	filter, err := ff.filter()
	if err != nil {
		fatal(err)
	}

	if err := commands.RunExport(path, filter, *output); err != nil {
		fatal(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `hap-log stats - Show statistics about the trace file

Usage:
  hap-log stats [flags] <file.haplog>

Flags:
`)
		fs.PrintDefaults()
	}
	ff := addFilterFlags(fs)

	path := parseArgs(fs, args)
	filter, err := ff.filter()
	if err != nil {
		fatal(err)
	}

	if err := commands.RunStats(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

// parseArgs parses the flags and returns the trace file path.
func parseArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
