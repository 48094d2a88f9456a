// Package gain converts between measured loudness values and the stored
// representations used by the individual tag schemes.
//
// Loudness is carried internally as LUFS integrated loudness and peak as
// dBFS sample peak, matching the ffmpeg ebur128 report. Each scheme stores
// an offset from its own reference level instead.
package gain

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
)

const (
	// ReplayGainRef is the ReplayGain 2.0 reference level, LUFS.
	ReplayGainRef = -18.0

	// R128Ref is the EBU R128 reference level used by the Opus R128 tags, LUFS.
	R128Ref = -23.0
)

// Tag values may carry a unit suffix ("-7.25 dB"); only the leading signed
// decimal is significant.
var (
	decimalRe  = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)`)
	opusGainRe = regexp.MustCompile(`^\s*([+-]?\d{1,5})`)
)

// ParseGain converts a text-scheme gain string to integrated loudness in
// LUFS. The stored value is the adjustment relative to the ReplayGain
// reference level.
func ParseGain(value string) (float64, bool) {
	m := decimalRe.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return ReplayGainRef - v, true
}

// FormatGain renders loudness as a text-scheme gain string.
func FormatGain(loudness float64) string {
	return fmt.Sprintf("%.2f dB", ReplayGainRef-loudness)
}

// ParsePeak converts a text-scheme peak string (linear amplitude, 1.0 = full
// scale) to dBFS.
func ParsePeak(value string) (float64, bool) {
	m := decimalRe.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return 20.0 * math.Log10(v), true
}

// FormatPeak renders a dBFS peak as a linear-amplitude text-scheme string.
func FormatPeak(peak float64) string {
	return fmt.Sprintf("%.6f", math.Pow(10.0, peak/20.0))
}

// ParseOpusGain converts an R128 tag value (Q7.8 fixed-point dB relative to
// -23 LUFS) to integrated loudness in LUFS.
func ParseOpusGain(value string) (float64, bool) {
	m := opusGainRe.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return R128Ref - v/256.0, true
}

// FormatOpusGain renders loudness as an R128 tag value. Values outside the
// signed 16-bit range are clamped with a warning naming the file and whether
// the track or album gain was affected.
func FormatOpusGain(filename string, loudness float64, context string) string {
	v := int(math.Round((R128Ref - loudness) * 256.0))

	clamped := min(max(v, -32768), 32767)
	if v != clamped {
		slog.Warn("clipping Opus R128 gain adjustment",
			"file", filename,
			"context", context,
			"value", fmt.Sprintf("%.2f dB", float64(v)/256),
			"clipped", fmt.Sprintf("%.2f dB", float64(clamped)/256),
		)
		v = clamped
	}

	return strconv.Itoa(v)
}

// RVA2Peak converts a dBFS peak to the 16-bit linear representation stored
// in an RVA2 frame (denominator 32768, so full scale is 32768 and the
// maximum representable value is 65535/32768). Rounding is half-to-even; the
// on-disk bytes depend on it. Overflow is clamped with a warning.
func RVA2Peak(filename string, peak float64, context string) uint16 {
	v := math.RoundToEven(math.Pow(10.0, peak/20.0) * 32768.0)

	if v > 65535 {
		slog.Warn("clipping RVA2 peak",
			"file", filename,
			"context", context,
			"value", fmt.Sprintf("%.2f", v/32768),
			"clipped", fmt.Sprintf("%.2f", 65535.0/32768),
		)
		v = 65535
	}

	return uint16(v)
}

// RVA2PeakDB converts a stored RVA2 peak back to dBFS.
func RVA2PeakDB(stored uint16) float64 {
	return 20.0 * math.Log10(float64(stored)/32768.0)
}
