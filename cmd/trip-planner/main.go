package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
)

const (
	exitFatal       = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if ctx.Err() != nil || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		fmt.Fprintln(os.Stderr, yellow("\nTrip planning cancelled. Safe travels!"))
		stop()
		os.Exit(exitInterrupted)
	}
	fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
	stop()
	os.Exit(exitFatal)
}
