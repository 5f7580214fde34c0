package main

import (
	"os"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/cli"
)

func main() {
	if !cli.Run(os.Args) {
		os.Exit(1)
	}
}
