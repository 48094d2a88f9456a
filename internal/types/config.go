package types

// OpusMode selects which gain tag scheme(s) are written to Ogg Opus files.
type OpusMode int

const (
	// OpusR128 writes the R128_TRACK_GAIN / R128_ALBUM_GAIN tags from the
	// Ogg Opus encapsulation spec (EBU R128 -23 LUFS reference) and removes
	// any REPLAYGAIN tags. The most standards compliant choice, but with
	// limited application compatibility.
	OpusR128 OpusMode = iota + 1

	// OpusReplayGain writes REPLAYGAIN_{TRACK,ALBUM}_{GAIN,PEAK} tags as
	// used by FLAC and Vorbis (-18 LUFS reference) and removes any R128
	// tags. Against the spirit of the spec, but most applications share
	// their tag parsing between Opus and the other Ogg codecs.
	OpusReplayGain

	// OpusCompatible writes both sets of tags. Both are derived from the
	// same measurement, so it doesn't matter which one a player picks up.
	// This is the default.
	OpusCompatible
)

// ID3Mode selects which gain tag scheme(s) are written to ID3 tags.
type ID3Mode int

const (
	// ID3ReplayGain writes TXXX REPLAYGAIN tags per the ReplayGain 2.0 spec.
	ID3ReplayGain ID3Mode = iota + 1

	// ID3RVA2 stores the gain information in ID3v2 RVA2 frames.
	ID3RVA2

	// ID3Compatible writes both TXXX tags and RVA2 frames. This is the
	// default.
	ID3Compatible
)

// TagConfig is the process-wide tagging policy. It is built once before any
// scan starts and never mutated afterwards.
type TagConfig struct {
	Opus OpusMode
	ID3  ID3Mode
}

// DefaultTagConfig returns the maximum-compatibility policy for both
// container families.
func DefaultTagConfig() TagConfig {
	return TagConfig{
		Opus: OpusCompatible,
		ID3:  ID3Compatible,
	}
}
