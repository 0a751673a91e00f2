package main

import (
	"os"

	"github.com/digitorus/svtvalidate/cli"
)

func main() {
	if len(os.Args) < 2 {
		cli.Usage()
	}

	switch os.Args[1] {
	case "validate":
		cli.ValidateCommand()
	case "issue":
		cli.IssueCommand()
	default:
		cli.Usage()
	}
}
