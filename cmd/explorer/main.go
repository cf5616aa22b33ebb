package main

import (
	"os"

	"movie-explorer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
