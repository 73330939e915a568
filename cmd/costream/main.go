package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chronologos/costream/internal/logging"
	"github.com/chronologos/costream/internal/protocol"
	"github.com/chronologos/costream/internal/version"
)

// globalFlags holds double-dash flags parsed from os.Args before dispatch.
// rest contains the remaining arguments with global flags stripped.
type globalFlags struct {
	version bool
	verbose bool
	rest    []string
}

func parseGlobalFlags(args []string) globalFlags {
	var g globalFlags
	for _, arg := range args {
		switch arg {
		case "--version":
			g.version = true
		case "--verbose":
			g.verbose = true
		default:
			g.rest = append(g.rest, arg)
		}
	}
	return g
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: costream inspect [-config file] [-max-payload n] [-metrics] [file]")
	fmt.Fprintln(w, "       costream sample [-compress n] [file]")
	fmt.Fprintln(w, "       costream hash <path>...")
	fmt.Fprintln(w, "       costream version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "flags:")
	fmt.Fprintln(w, "  --version  print version and exit")
	fmt.Fprintln(w, "  --verbose  log every frame at debug level")
}

func main() {
	gf := parseGlobalFlags(os.Args[1:])

	if gf.version || (len(gf.rest) > 0 && gf.rest[0] == "version") {
		fmt.Println(version.String(protocol.Version))
		os.Exit(0)
	}
	if len(gf.rest) == 0 {
		usage(os.Stderr)
		os.Exit(1)
	}
	if gf.verbose {
		os.Setenv(logging.EnvLogLevel, "debug")
	}
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := gf.rest[0], gf.rest[1:]; cmd {
	case "inspect":
		err = runInspect(ctx, args, os.Stdin, os.Stdout)
	case "sample":
		err = runSample(args, os.Stdout)
	case "hash":
		err = runHash(args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "costream: %v\n", err)
		os.Exit(1)
	}
}

func runHash(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("hash: at least one path is required")
	}
	for _, p := range args {
		fmt.Fprintf(out, "%08x  %s\n", protocol.FileIDFromPath(p), p)
	}
	return nil
}
