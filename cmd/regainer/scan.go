package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kepstin/regainer"
)

const usageText = `Files are grouped by the selector options given after the flags:

   -t, --track FILE...              treat the following files as individual tracks
   -a, --album FILE...              treat the following files as one album; each
                                    --album starts a new album
   -e, --exclude FILE...            tag the following files as part of the current
                                    album, but do not use their audio when
                                    calculating the album gain

If neither --track nor --album is given, the mode depends on the number of
files: a single file is processed in track mode, multiple files are processed
as a single album.`

func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Only calculate and display the ReplayGain values; do not save tags",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Recalculate the ReplayGain values even if valid tags are present",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Print a bunch of extra debugging output",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "The number of operations to run in parallel (default: auto-detected)",
			Value:   runtime.NumCPU(),
		},
		&cli.StringFlag{
			Name:  "opus-mode",
			Usage: "Tag scheme for Ogg Opus files: r128, replaygain, compatible",
			Value: "compatible",
		},
		&cli.StringFlag{
			Name:  "id3-mode",
			Usage: "Tag scheme for ID3 tags: replaygain, rva2, compatible",
			Value: "compatible",
		},
	}
}

func scanAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("debug logging has been enabled")
	}

	cfg, err := parseTagConfig(cmd.String("opus-mode"), cmd.String("id3-mode"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	in, err := parseInputs(cmd.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error()+"\n\nusage: "+cmd.Name+" [options] "+cmd.ArgsUsage, 2)
	}

	sched := regainer.NewScheduler(cmd.Int("jobs"))
	reporter := regainer.NewReporter(os.Stdout)

	batch := &regainer.Batch{}

	for _, album := range in.albums {
		batch.Albums = append(batch.Albums, regainer.NewAlbum(album.tracks, album.exclude, cfg, sched, reporter))
	}

	for _, filename := range in.tracks {
		batch.Tracks = append(batch.Tracks, regainer.NewTrack(filename, cfg, sched, reporter))
	}

	return batch.Scan(ctx, regainer.ScanOptions{
		Force:  cmd.Bool("force"),
		DryRun: cmd.Bool("dry-run"),
	})
}

func parseTagConfig(opusMode, id3Mode string) (regainer.TagConfig, error) {
	cfg := regainer.DefaultTagConfig()

	switch opusMode {
	case "r128":
		cfg.Opus = regainer.OpusR128
	case "replaygain":
		cfg.Opus = regainer.OpusReplayGain
	case "compatible":
		cfg.Opus = regainer.OpusCompatible
	default:
		return cfg, fmt.Errorf("unknown --opus-mode %q", opusMode)
	}

	switch id3Mode {
	case "replaygain":
		cfg.ID3 = regainer.ID3ReplayGain
	case "rva2":
		cfg.ID3 = regainer.ID3RVA2
	case "compatible":
		cfg.ID3 = regainer.ID3Compatible
	default:
		return cfg, fmt.Errorf("unknown --id3-mode %q", id3Mode)
	}

	return cfg, nil
}

// albumSpec is one album group: member files plus files tagged with the
// album values but excluded from the aggregate measurement.
type albumSpec struct {
	tracks  []string
	exclude []string
}

type inputs struct {
	tracks []string
	albums []albumSpec
}

var errNoInputs = errors.New("no tracks or albums specified")

// parseInputs resolves the order-dependent selector arguments into tracks
// and album groups. Bare files before any selector follow the implicit
// rule: more than one bare file, or any ungrouped exclude, forms one
// implicit album; exactly one bare file is a single track.
func parseInputs(args []string) (inputs, error) {
	const (
		modeBare = iota
		modeTrack
		modeAlbum
		modeExclude
		modeLooseExclude
	)

	var (
		in           inputs
		bare         []string
		looseExclude []string
	)

	mode := modeBare
	filesSeen := true

	for _, arg := range args {
		switch arg {
		case "-t", "--track":
			if !filesSeen {
				return inputs{}, errors.New("selector option requires at least one file")
			}

			mode = modeTrack
			filesSeen = false

			continue
		case "-a", "--album":
			if !filesSeen {
				return inputs{}, errors.New("selector option requires at least one file")
			}

			in.albums = append(in.albums, albumSpec{})
			mode = modeAlbum
			filesSeen = false

			continue
		case "-e", "--exclude":
			if !filesSeen {
				return inputs{}, errors.New("selector option requires at least one file")
			}

			if len(in.albums) == 0 {
				mode = modeLooseExclude
			} else {
				mode = modeExclude
			}

			filesSeen = false

			continue
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			return inputs{}, fmt.Errorf("unknown option %q", arg)
		}

		filesSeen = true

		switch mode {
		case modeBare:
			bare = append(bare, arg)
		case modeTrack:
			in.tracks = append(in.tracks, arg)
		case modeAlbum:
			in.albums[len(in.albums)-1].tracks = append(in.albums[len(in.albums)-1].tracks, arg)
		case modeExclude:
			in.albums[len(in.albums)-1].exclude = append(in.albums[len(in.albums)-1].exclude, arg)
		case modeLooseExclude:
			looseExclude = append(looseExclude, arg)
		}
	}

	if !filesSeen {
		return inputs{}, errors.New("selector option requires at least one file")
	}

	// Turn the loose arguments into tracks or an implicit album.
	if len(bare)+len(looseExclude) > 1 || len(looseExclude) > 0 {
		in.albums = append([]albumSpec{{tracks: bare, exclude: looseExclude}}, in.albums...)
	} else if len(bare) == 1 {
		in.tracks = append(in.tracks, bare[0])
	}

	if len(in.tracks) == 0 && len(in.albums) == 0 {
		return inputs{}, errNoInputs
	}

	return in, nil
}
