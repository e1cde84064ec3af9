package main

import (
	"context"
	"os"

	"github.com/yndnr/rosso/internal/cli/command"
)

func main() {
	os.Exit(command.Run(context.Background(), os.Args))
}
