package types

import (
	"fmt"
	"math"
	"strings"
)

// GainInfo holds the loudness measurements for one track, optionally paired
// with the aggregate values of the album it belongs to.
//
// Fields are pointers: a nil field means the value was never measured and no
// tag recorded it, which is distinct from any numeric value including zero.
// A NaN peak is a valid-but-unknown marker used when a tag scheme records
// gain without a peak (the Opus R128 tags have no peak concept).
type GainInfo struct {
	Loudness      *float64 // integrated loudness, LUFS
	Peak          *float64 // sample peak, dBFS
	AlbumLoudness *float64 // LUFS
	AlbumPeak     *float64 // dBFS
}

// Equal reports field-wise equality. Two NaN peaks compare equal: both mark
// the same "known tagged, peak unknown" state.
func (g GainInfo) Equal(other GainInfo) bool {
	return fieldEqual(g.Loudness, other.Loudness) &&
		fieldEqual(g.Peak, other.Peak) &&
		fieldEqual(g.AlbumLoudness, other.AlbumLoudness) &&
		fieldEqual(g.AlbumPeak, other.AlbumPeak)
}

func fieldEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}

	if math.IsNaN(*a) && math.IsNaN(*b) {
		return true
	}

	return *a == *b
}

// FieldEqual reports whether two optional values hold the same measurement,
// treating NaN as equal to NaN.
func FieldEqual(a, b *float64) bool {
	return fieldEqual(a, b)
}

func (g GainInfo) String() string {
	var sb strings.Builder

	sb.WriteString("Track: ")
	writeField(&sb, "I", g.Loudness, "LUFS")
	sb.WriteString(", ")
	writeField(&sb, "Peak", g.Peak, "dBFS")
	sb.WriteString("; Album: ")
	writeField(&sb, "I", g.AlbumLoudness, "LUFS")
	sb.WriteString(", ")
	writeField(&sb, "Peak", g.AlbumPeak, "dBFS")

	return sb.String()
}

func writeField(sb *strings.Builder, label string, v *float64, unit string) {
	if v == nil {
		fmt.Fprintf(sb, "%s: None", label)

		return
	}

	fmt.Fprintf(sb, "%s: %.2f %s", label, *v, unit)
}

// Float returns a pointer to v, for building GainInfo values.
func Float(v float64) *float64 {
	return &v
}
