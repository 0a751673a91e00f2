// Package cli implements the svtvalidate command-line front end: a
// validate subcommand that prints one JSON verdict per signature and an
// issue subcommand that signs a Signature Validation Token over a prior
// validation.
package cli

import (
	"fmt"
	"os"
)

// osExit is a package-level indirection over os.Exit so tests can patch
// it and recover from the resulting panic instead of killing the test
// binary.
var osExit = os.Exit

func Usage() {
	fmt.Printf("Usage: %s <command> [options] <args>\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  validate  Validate the digital signatures of a PDF file")
	fmt.Println("  issue     Issue a Signature Validation Token for a PDF's signature")
	fmt.Println("")
	fmt.Printf("Use '%s <command> -h' for command-specific help\n", os.Args[0])
	osExit(1)
}
