package main

import (
	"os"

	"github.com/budgetkit/budget/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
