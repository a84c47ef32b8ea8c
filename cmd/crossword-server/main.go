package main

import (
	"os"

	"github.com/crossword-extravaganza/server/cmd/crossword-server/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
