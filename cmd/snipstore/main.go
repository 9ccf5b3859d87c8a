// Command snipstore is the command-line client for the store.
package main

import (
	"context"
	"os"

	"github.com/sakif/snipstore/internal/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
