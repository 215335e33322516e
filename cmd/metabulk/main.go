package main

import (
	"os"

	"github.com/lazymak3r/meta-bulk-assign/cmd/metabulk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
