package main

import (
	"os"

	"github.com/tgairbot/cli/cmd"
	"github.com/tgairbot/cli/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
