package main

import (
	"fmt"
	"os"

	"github.com/dev-rafaelmachado/datalid-ocrcore/cmd/ocrcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCodeFor(err))
	}
}
