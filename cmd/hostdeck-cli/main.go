package main

import (
	"os"

	"github.com/yndnr/hostdeck-go/internal/cli/command"
)

func main() {
	os.Exit(command.Main(os.Args))
}
