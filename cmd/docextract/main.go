// Command docextract extracts invoice fields and tables from PDFs and
// photographed pages on the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
