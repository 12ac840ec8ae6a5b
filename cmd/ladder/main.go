package main

import (
	"os"

	"github.com/vitos/take_profit/cmd/ladder/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
