package main

import (
	"os"

	"github.com/chazu/kerf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
