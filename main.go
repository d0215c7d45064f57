package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cryptoWallet/config"
)

func main() {
	// 1. Cancel running commands on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// 2. Run the command line application; commands load the configuration themselves
	err := newApp(config.LoadConfig).RunContext(ctx, os.Args)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wallet: %v\n", err)
		os.Exit(1)
	}
}
