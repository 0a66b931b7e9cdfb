package main

import (
	"fmt"
	"os"

	"leafscan/cmd/leafscan/cli"

	"github.com/joho/godotenv"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	// A .env next to the binary may set LEAFSCAN_ENDPOINT and LEAFSCAN_TIMEOUT
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not read .env: %v\n", err)
	}

	if err := NewRootCmd().Execute(); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
