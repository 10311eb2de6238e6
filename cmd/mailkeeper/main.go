package main

import (
	"os"

	"github.com/dhollis/mailkeeper/cmd/mailkeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
