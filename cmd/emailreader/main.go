package main

import (
	"os"

	// Import init package first to set up logging defaults before config loads
	_ "github.com/beam-cloud/emailreader/internal/init"

	"github.com/beam-cloud/emailreader/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
