package tags

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kepstin/regainer/internal/types"
)

func opusConfig(mode types.OpusMode) types.TagConfig {
	cfg := types.DefaultTagConfig()
	cfg.Opus = mode

	return cfg
}

func newOpusTagger(mode types.OpusMode, st store) *Tagger {
	return newStoreTagger("test.opus", familyOpus, opusConfig(mode), st)
}

func TestReadOpusR128(t *testing.T) {
	st := newMemStore()
	st.set(keyR128TrackGain, "1280")
	st.set(keyR128AlbumGain, "-256")

	tg := newOpusTagger(types.OpusR128, st)
	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.InDelta(t, -28.0, *got.Loudness, 1e-9)
	require.NotNil(t, got.AlbumLoudness)
	assert.InDelta(t, -22.0, *got.AlbumLoudness, 1e-9)

	// The R128 scheme has no peak; a gain-only file still counts as tagged.
	require.NotNil(t, got.Peak)
	assert.True(t, math.IsNaN(*got.Peak))
	require.NotNil(t, got.AlbumPeak)
	assert.True(t, math.IsNaN(*got.AlbumPeak))

	assert.False(t, tg.needAlbumUpdate)
}

func TestReadOpusNoUnknownPeakOutsideR128Mode(t *testing.T) {
	st := newMemStore()
	st.set(keyR128TrackGain, "1280")

	tg := newOpusTagger(types.OpusCompatible, st)
	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.Nil(t, got.Peak)

	// Compatible policy also wants the text scheme, which is missing.
	assert.True(t, tg.needTrackUpdate)
}

func TestReadOpusTextScheme(t *testing.T) {
	st := newMemStore()
	st.set(keyTrackGain, "-5.00 dB")
	st.set(keyTrackPeak, "1.000000")

	tg := newOpusTagger(types.OpusReplayGain, st)
	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.InDelta(t, -13.0, *got.Loudness, 1e-9)
	require.NotNil(t, got.Peak)
	assert.InDelta(t, 0.0, *got.Peak, 1e-9)

	assert.False(t, tg.needTrackUpdate)
}

func TestReadOpusR128WinsOverText(t *testing.T) {
	st := newMemStore()
	st.set(keyR128TrackGain, "1280") // -28 LUFS
	st.set(keyTrackGain, "-5.00 dB") // -13 LUFS
	st.set(keyTrackPeak, "1.000000")

	tg := newOpusTagger(types.OpusCompatible, st)
	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.InDelta(t, -28.0, *got.Loudness, 1e-9)
	require.NotNil(t, got.Peak)
	assert.InDelta(t, 0.0, *got.Peak, 1e-9)

	assert.False(t, tg.needTrackUpdate)
}

func TestWriteOpusModes(t *testing.T) {
	full := types.GainInfo{
		Loudness:      types.Float(-13.0),
		Peak:          types.Float(-0.2),
		AlbumLoudness: types.Float(-12.0),
		AlbumPeak:     types.Float(0.0),
	}

	tests := []struct {
		name        string
		mode        types.OpusMode
		wantKeys    []string
		unknownPeak bool
	}{
		{"r128", types.OpusR128, []string{keyR128AlbumGain, keyR128TrackGain}, true},
		{"replaygain", types.OpusReplayGain, []string{
			keyAlbumGain, keyAlbumPeak, keyTrackGain, keyTrackPeak,
		}, false},
		{"compatible", types.OpusCompatible, []string{
			keyR128AlbumGain, keyR128TrackGain,
			keyAlbumGain, keyAlbumPeak, keyTrackGain, keyTrackPeak,
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := newMemStore()
			st.set(keyRefLevel, "89.0 dB") // stale, must go

			tg := newOpusTagger(tc.mode, st)
			tg.gain = full
			tg.writeOpus()

			assert.ElementsMatch(t, tc.wantKeys, st.keys())

			got := reread(tg)
			require.NotNil(t, got.Loudness)
			assert.InDelta(t, -13.0, *got.Loudness, 1.0/256)
			require.NotNil(t, got.AlbumLoudness)
			assert.InDelta(t, -12.0, *got.AlbumLoudness, 1.0/256)

			require.NotNil(t, got.Peak)
			require.NotNil(t, got.AlbumPeak)

			if tc.unknownPeak {
				// The R128 scheme cannot store a peak.
				assert.True(t, math.IsNaN(*got.Peak))
				assert.True(t, math.IsNaN(*got.AlbumPeak))
			} else {
				assert.InDelta(t, -0.2, *got.Peak, 0.001)
				assert.InDelta(t, 0.0, *got.AlbumPeak, 0.001)
			}

			assert.False(t, tg.needAlbumUpdate)
		})
	}
}

func TestWriteOpusR128RoundTrip(t *testing.T) {
	st := newMemStore()
	tg := newOpusTagger(types.OpusR128, st)
	tg.gain = types.GainInfo{
		Loudness:      types.Float(-13.37),
		AlbumLoudness: types.Float(-12.12),
	}
	tg.writeOpus()

	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.InDelta(t, -13.37, *got.Loudness, 1.0/256)
	require.NotNil(t, got.AlbumLoudness)
	assert.InDelta(t, -12.12, *got.AlbumLoudness, 1.0/256)
	require.NotNil(t, got.Peak)
	assert.True(t, math.IsNaN(*got.Peak))

	assert.False(t, tg.needAlbumUpdate)
}
