// Package main is the entry point for the lakeboard CLI binary.
package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3"

	cli "lakeboard/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
