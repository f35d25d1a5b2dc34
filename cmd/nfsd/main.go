package main

import (
	"os"

	"github.com/kestrelfs/nfsd/cmd/nfsd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
