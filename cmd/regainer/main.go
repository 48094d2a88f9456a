package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kepstin/regainer/version"
)

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:        version.Name(),
		Usage:       "Add ReplayGain tags to audio files using the EBU R128 algorithm",
		ArgsUsage:   "[-t FILE...] [-a FILE... [-e FILE...]]... [FILE...]",
		Description: usageText,
		Version:     version.Full(),
		Flags:       scanFlags(),
		Action:      scanAction,
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
