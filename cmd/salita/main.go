package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/conorfennell/salita/internal/config"
)

const usage = `Usage: salita [flags] <command> [args]

Commands:
  answer <id> <category> <correct|wrong>   record an answer for an item
  due [category]                           list items due for review
  difficult [category]                     list items answered poorly
  stats [category]                         summarise review progress
  reset <id>                               forget an item's review state
  history <id>                             show an item's review state and answers
  check "<target ids>" "<attempt ids>"     validate a sentence attempt
  hint "<target ids>" ["<attempt so far>"] get a hint for the next word
  drills                                   list sentence drills from the decks
  orphans                                  list review records no deck accounts for
  serve                                    run the HTTP API

The target of check and hint may also be a drill id or id prefix.

Flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "salita: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// 1. Parse flags and build the configuration
	flags := pflag.NewFlagSet("salita", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// 2. Find the command
	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		flags.Usage()
		return errUsage
	}
	if len(rest)-1 < cmd.minArgs || len(rest)-1 > cmd.maxArgs {
		fmt.Fprintf(stderr, "usage: salita %s %s\n", rest[0], cmd.args)
		return errUsage
	}

	// 3. Open the database and run it
	a, err := newApp(cfg, stdout)
	if err != nil {
		return err
	}
	defer a.close()

	return cmd.run(ctx, a, rest[1:])
}
