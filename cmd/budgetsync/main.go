package main

import (
	"os"

	"github.com/budgetsync-dev/budgetsync/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
