package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdahlka1/cec.ai-demo/internal/cli"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, common.ErrConfiguration) {
		os.Exit(2)
	}
	os.Exit(1)
}
