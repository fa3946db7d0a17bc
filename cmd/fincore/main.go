package main

import (
	"os"

	"github.com/cleared-dev/fincore/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
