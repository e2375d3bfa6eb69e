package main

import (
	"os"

	"github.com/tagscout/tagscout/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
