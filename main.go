package main

import (
	"fmt"
	"os"

	"deribit-dashboard/internal/cli"
	"deribit-dashboard/internal/config"
	"deribit-dashboard/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("DERIBIT_DASH_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Log)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
