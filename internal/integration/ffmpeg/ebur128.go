package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/kepstin/regainer/internal/integration/binary"
	"github.com/kepstin/regainer/internal/types"
)

var errNoInputFiles = errors.New("album measurement requires at least one file")

// MeasureTrack decodes one file through the ebur128 filter and returns its
// integrated loudness and sample peak.
func MeasureTrack(ctx context.Context, filename string) (types.GainInfo, error) {
	slog.Debug("ffmpeg.MeasureTrack", "file", filename)

	return run(ctx,
		"-i", "file:"+filename,
		"-filter_complex", "ebur128=framelog=verbose:peak=true[out]",
		"-map", "[out]",
	)
}

// MeasureAlbum concatenates the given files and measures the result as one
// continuous signal. The filter has no album concept, so its track-level
// output maps to the album fields of the returned GainInfo.
func MeasureAlbum(ctx context.Context, filenames []string) (types.GainInfo, error) {
	if len(filenames) == 0 {
		return types.GainInfo{}, errNoInputFiles
	}

	slog.Debug("ffmpeg.MeasureAlbum", "files", len(filenames))

	args := make([]string, 0, 2*len(filenames)+4)
	for _, filename := range filenames {
		args = append(args, "-i", "file:"+filename)
	}

	args = append(args,
		"-filter_complex", "concat=n="+strconv.Itoa(len(filenames))+":v=0:a=1,ebur128=framelog=verbose[out]",
		"-map", "[out]",
	)

	result, err := run(ctx, args...)
	if err != nil {
		return types.GainInfo{}, err
	}

	return types.GainInfo{
		AlbumLoudness: result.Loudness,
		AlbumPeak:     result.Peak,
	}, nil
}

// run invokes ffmpeg with the measurement boilerplate around the given
// input/filter arguments, discarding decoded samples and parsing the report
// from the diagnostic stream. No timeout is imposed; album concatenations
// can legitimately run long, and cancellation flows through the context.
func run(ctx context.Context, args ...string) (types.GainInfo, error) {
	ffmpegPath, found := binary.Available(name)
	if !found {
		return types.GainInfo{}, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ffArgs := append([]string{
		"-nostats",
		"-nostdin",
		"-hide_banner",
		"-vn",
		"-loglevel", "info",
	}, args...)
	ffArgs = append(ffArgs, "-f", "null", "-")

	slog.Debug("ffmpeg command", "args", ffArgs)

	cmd := exec.CommandContext(ctx, ffmpegPath, ffArgs...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return types.GainInfo{}, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return parseReport(stderr.Bytes()), nil
}

// parseReport extracts the integrated loudness and peak from the ebur128
// log. Later matches supersede earlier per-segment summaries.
func parseReport(report []byte) types.GainInfo {
	var result types.GainInfo

	scanner := bufio.NewScanner(bytes.NewReader(report))
	for scanner.Scan() {
		line := scanner.Text()

		if m := integratedRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				result.Loudness = &v
			}
		}

		if m := peakRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				result.Peak = &v
			}
		}
	}

	return result
}
