// Package main provides the traduit CLI: operator commands over the
// content-addressed translation store plus the HTTP API server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
