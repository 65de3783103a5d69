package main

import (
	"os"

	"github.com/storycurator/curator/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
