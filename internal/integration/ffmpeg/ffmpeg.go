// Package ffmpeg runs loudness measurements through the ffmpeg ebur128
// filter and parses its report.
package ffmpeg

import "regexp"

const name = "ffmpeg"

// The ebur128 filter logs running summaries followed by a final one; the
// last match of each pattern is the integrated result.
var (
	integratedRe = regexp.MustCompile(`^\s+I:\s+(-?\d+\.\d+) LUFS$`)
	peakRe       = regexp.MustCompile(`^\s+Peak:\s+(-?\d+\.\d+) dBFS$`)
)
