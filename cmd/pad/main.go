// Package main is the entry point for Pad.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/pad/internal/app"
	"github.com/dshills/pad/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errExit stops run after flags were handled, with the carried code.
type errExit struct{ code int }

func (e errExit) Error() string { return fmt.Sprintf("exit %d", e.code) }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fallback := app.WriterAlerter{W: os.Stderr}

	opts, err := parseFlags(args, os.Stdout, os.Stderr)
	if err != nil {
		var exit errExit
		if errors.As(err, &exit) {
			return exit.code
		}
		fallback.Alert("Pad", err.Error())
		return 1
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fallback.Alert("Pad", "init screen: stdout is not a terminal")
		return 1
	}

	application, err := app.New(opts)
	if err != nil {
		fallback.Alert("Pad", err.Error())
		return 1
	}
	defer application.Shutdown()

	screen, err := backend.NewTerminal()
	if err != nil {
		fallback.Alert("Pad", (&app.InitError{Component: "screen", Err: err}).Error())
		return 1
	}
	if err := application.SetBackend(screen); err != nil {
		fallback.Alert("Pad", err.Error())
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		if _, ok := <-signals; ok {
			screen.PostEvent(backend.Event{Type: backend.EventQuit})
		}
	}()

	err = application.Run()
	var ierr *app.InitError
	if errors.As(err, &ierr) {
		// The screen never came up, so the dialog could not be shown.
		fallback.Alert("Pad", err.Error())
	}
	return app.ExitCode(err)
}

// parseFlags parses command line arguments into application options.
// -help and -version are answered here and reported as errExit.
func parseFlags(args []string, stdout, stderr io.Writer) (app.Options, error) {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	fs := flag.NewFlagSet("pad", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload the configuration file when it changes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Pad - single line text input\n\n")
		fmt.Fprintf(stderr, "Usage: pad [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nKeys:\n")
		fmt.Fprintf(stderr, "  Left/Right/Home/End   Move the cursor\n")
		fmt.Fprintf(stderr, "  Backspace             Delete a character\n")
		fmt.Fprintf(stderr, "  Ctrl+Backspace        Delete a word\n")
		fmt.Fprintf(stderr, "  Esc, Ctrl+C           Quit\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errExit{code: 0}
		}
		return opts, errExit{code: 1}
	}

	if showHelp {
		fs.Usage()
		return opts, errExit{code: 0}
	}

	if showVersion {
		fmt.Fprintf(stdout, "Pad %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errExit{code: 0}
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}

	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if opts.Watch && opts.ConfigPath == "" {
		return opts, errors.New("-watch requires -config")
	}

	return opts, nil
}
