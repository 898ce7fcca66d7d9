// Command fbplayer plays a raw planar video stream to a pluggable
// display sink, pacing presentation against a pluggable timer and
// optionally aligning playback across instances over netsync.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/snapetech/fbplayer/internal/config"
	"github.com/snapetech/fbplayer/internal/orchestrator"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opt, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A clean SIGINT drains the display FIFO and returns nil, matching
	// the reference engine's exit-0-after-drain behavior; only a real
	// setup or runtime failure reaches this branch.
	if err := orchestrator.Run(ctx, opt); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}
