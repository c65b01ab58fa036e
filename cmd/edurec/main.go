// Command edurec is the entry point for the personalised learning-content
// recommender. It provides a CLI (via Cobra) for one-shot recommendations and
// catalogue management, and an HTTP server exposing the pipeline as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/edurec-go/cmd/edurec/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
