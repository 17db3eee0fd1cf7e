package main

import (
	"os"

	"github.com/resumerater/resumerater/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
