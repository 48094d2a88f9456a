// Package regainer computes and maintains ReplayGain metadata for audio
// files, reconciling the competing tag schemes per container family and
// coordinating concurrent measurement of tracks and albums.
package regainer

import (
	"github.com/kepstin/regainer/internal/types"
)

// GainInfo is a loudness/peak measurement for one track, optionally paired
// with album-level aggregates. Re-exported from internal/types.
type GainInfo = types.GainInfo

// TagConfig is the immutable process-wide tagging policy.
type TagConfig = types.TagConfig

// OpusMode selects the tag scheme(s) written to Ogg Opus files.
type OpusMode = types.OpusMode

// ID3Mode selects the tag scheme(s) written to ID3 tags.
type ID3Mode = types.ID3Mode

// Re-export the policy constants.
const (
	OpusR128       = types.OpusR128
	OpusReplayGain = types.OpusReplayGain
	OpusCompatible = types.OpusCompatible

	ID3ReplayGain = types.ID3ReplayGain
	ID3RVA2       = types.ID3RVA2
	ID3Compatible = types.ID3Compatible
)

// DefaultTagConfig returns the maximum-compatibility policy for both
// container families.
func DefaultTagConfig() TagConfig {
	return types.DefaultTagConfig()
}

// ScanOptions control one batch run. Set once before the batch starts.
type ScanOptions struct {
	// Force remeasures loudness even when valid tags are already present.
	Force bool

	// DryRun calculates and reports but never writes tags.
	DryRun bool
}
