package main

import (
	"context"
	"os"

	"github.com/snipsco/snips-nlu-go/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
