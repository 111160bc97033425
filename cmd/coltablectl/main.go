// Command coltablectl drives the bulk-load core from the shell: it can
// print a Sizer's emitted chunk-size sequence, run a small in-memory
// arena demo, or serve a long-running file-channel-provider and staging
// buffer process until signalled to stop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "sizer":
		err = runSizer(os.Args[2:])
	case "arena-demo":
		err = runArenaDemo(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: coltablectl <sizer|arena-demo|serve> [flags]")
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, in the
// same shape as the teacher's server command.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}
