// Command dvstamp resolves the recording time of video files and either
// renames them after it or burns it into a re-encoded copy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel on SIGINT/SIGTERM so the batch stops between files; running
	// encodes are killed through the context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	err := root.ExecuteContext(ctx)
	if a.log != nil {
		if err != nil {
			a.log.Error("%v", err)
		}
		a.log.Close()
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "dvstamp: %v\n", err)
	}
	if err != nil {
		return 1
	}
	return 0
}
