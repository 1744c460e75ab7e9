package main

import (
	"fmt"
	"os"

	"github.com/dayline-app/dayline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "daylined failed: %v\n", err)
		os.Exit(1)
	}
}
