// Package main is the entry point for the mealtuner CLI.
package main

import (
	"os"

	"github.com/casafeliz/mealtuner/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
