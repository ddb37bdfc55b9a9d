// Command pusher-log views and analyzes protocol capture files.
//
// Capture files are created by running pusher-cli with the -log-file
// flag; they hold one CBOR-encoded event per protocol frame, state
// change or error.
//
// Usage:
//
//	pusher-log <command> [flags] <file.cborlog>
//
// Commands:
//
//	view     View a capture in human-readable format
//	stats    Show statistics about a capture
//
// Examples:
//
//	# View all events
//	pusher-log view session.cborlog
//
//	# View only outbound wire-layer events
//	pusher-log view -layer wire -direction out session.cborlog
//
//	# View one channel's traffic
//	pusher-log view -channel ticker session.cborlog
//
//	# Show statistics
//	pusher-log stats session.cborlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jesusruizlopez/pusher-java-client/cmd/pusher-log/commands"
	"github.com/jesusruizlopez/pusher-java-client/pkg/log"
)

const usage = `pusher-log - Protocol Capture Analyzer

Usage:
  pusher-log <command> [flags] <file.cborlog>

Commands:
  view     View a capture in human-readable format
  stats    Show statistics about a capture

Use "pusher-log <command> -help" for more information about a command.
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

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	layer := fs.String("layer", "", "Filter by layer (transport, wire, channel)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, state, error)")
	channelName := fs.String("channel", "", "Filter by channel name")
	connID := fs.String("conn-id", "", "Filter by connection ID")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		os.Exit(1)
	}

	filter := &log.Filter{
		ConnectionID: *connID,
		Channel:      *channelName,
	}
	if err := applyEnumFlags(filter, *layer, *direction, *category); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := commands.RunView(os.Stdout, fs.Arg(0), filter); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		os.Exit(1)
	}

	if err := commands.RunStats(os.Stdout, fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyEnumFlags(filter *log.Filter, layer, direction, category string) error {
	if layer != "" {
		l, err := commands.ParseLayer(layer)
		if err != nil {
			return err
		}
		filter.Layer = &l
	}
	if direction != "" {
		d, err := commands.ParseDirection(direction)
		if err != nil {
			return err
		}
		filter.Direction = &d
	}
	if category != "" {
		c, err := commands.ParseCategory(category)
		if err != nil {
			return err
		}
		filter.Category = &c
	}
	return nil
}
