// Package main is the entry point of the dg CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/deepguide-ai/dg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
