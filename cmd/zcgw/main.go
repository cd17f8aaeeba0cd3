package main

import (
	"os"

	"github.com/zeroclaw/provider-gateway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
