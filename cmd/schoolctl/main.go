// Package main provides the operator CLI for class ordering, spreadsheet
// previews and fee quotes.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
