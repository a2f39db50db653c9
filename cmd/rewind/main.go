// Command rewind is an interactive demo of the mutation log engine: a
// counter store driven by line commands with full undo/redo history.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/rewindkit/rewind/examples/counter"
	"github.com/rewindkit/rewind/pkg/engine"
	otelinit "github.com/rewindkit/rewind/pkg/otel"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type config struct {
	// CheckpointEvery enables state checkpoints every N commits (0 = off).
	CheckpointEvery int `env:"REWIND_CHECKPOINT_EVERY" envDefault:"0"`
	// TraceStdout prints OTel spans to stdout.
	TraceStdout bool `env:"REWIND_TRACE_STDOUT" envDefault:"false"`
}

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("rewind %s (commit=%s, date=%s)\n", version, commit, date)
		return
	}

	ctx := context.Background()
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if cfg.TraceStdout {
		shutdown, err := otelinit.Init(ctx, otelinit.Config{ServiceName: "rewind", ServiceVersion: version, UseStdout: true})
		if err != nil {
			fmt.Fprintf(os.Stderr, "otel init error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	store, eng, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup error: %v\n", err)
		os.Exit(1)
	}
	if err := runSession(ctx, os.Stdin, os.Stdout, store, eng); err != nil {
		fmt.Fprintf(os.Stderr, "session error: %v\n", err)
		os.Exit(1)
	}
}

func buildStore(cfg config) (*counter.Store, *engine.Engine, error) {
	if cfg.CheckpointEvery > 0 {
		return counter.NewWithCheckpoints(cfg.CheckpointEvery)
	}
	return counter.New()
}

// runSession reads line commands and drives the store and engine. It is
// factored out of main so tests can script a session.
func runSession(ctx context.Context, r io.Reader, w io.Writer, store *counter.Store, eng *engine.Engine) error {
	fmt.Fprintln(w, "commands: inc N | dec N | set N | undo | redo | history | reset | state | quit")
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "inc", "dec", "set":
			if len(fields) != 2 {
				fmt.Fprintf(w, "usage: %s N\n", fields[0])
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(w, "not a number: %s\n", fields[1])
				continue
			}
			kind := map[string]string{
				"inc": counter.KindIncrement,
				"dec": counter.KindDecrement,
				"set": counter.KindSet,
			}[fields[0]]
			if err := store.Commit(ctx, kind, n); err != nil {
				fmt.Fprintf(w, "commit failed: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "count=%d\n", store.Count)
		case "undo":
			if !eng.CanUndo() {
				fmt.Fprintln(w, "nothing to undo")
				continue
			}
			if err := eng.Undo(ctx); err != nil {
				return err
			}
			fmt.Fprintf(w, "count=%d\n", store.Count)
		case "redo":
			if !eng.CanRedo() {
				fmt.Fprintln(w, "nothing to redo")
				continue
			}
			if err := eng.Redo(ctx); err != nil {
				return err
			}
			fmt.Fprintf(w, "count=%d\n", store.Count)
		case "history":
			for i, rec := range eng.History() {
				fmt.Fprintf(w, "%3d %s %v\n", i+1, rec.Kind, rec.Payload)
			}
			fmt.Fprintf(w, "%d recorded, %d undone\n", eng.Len(), eng.RedoLen())
		case "reset":
			if err := eng.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(w, "count=%d\n", store.Count)
		case "state":
			fmt.Fprintf(w, "count=%d\n", store.Count)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(w, "unknown command: %s\n", fields[0])
		}
	}
	return sc.Err()
}
