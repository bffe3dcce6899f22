package main

import (
	"os"

	"github.com/concertarchive/nyc-crawler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
