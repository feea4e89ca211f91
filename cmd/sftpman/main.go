package main

import (
	"os"

	"github.com/majorcontext/sftpman/cmd/sftpman/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
