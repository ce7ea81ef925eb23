package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/chatdeck/cli/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// Best effort: a missing .env is the common case.
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), cmd.Root()); err != nil {
		os.Exit(1)
	}
}
