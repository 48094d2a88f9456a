package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kepstin/regainer/internal/types"
)

func TestReadGeneric(t *testing.T) {
	st := newMemStore()
	st.set(keyTrackGain, "-5.00 dB")
	st.set(keyTrackPeak, "0.977237")
	st.set(keyAlbumGain, "-6.00 dB")
	st.set(keyAlbumPeak, "1.000000")

	tg := newStoreTagger("test.flac", familyGeneric, types.DefaultTagConfig(), st)
	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.InDelta(t, -13.0, *got.Loudness, 1e-9)
	require.NotNil(t, got.Peak)
	assert.InDelta(t, -0.2, *got.Peak, 1e-4)
	require.NotNil(t, got.AlbumLoudness)
	assert.InDelta(t, -12.0, *got.AlbumLoudness, 1e-9)
	require.NotNil(t, got.AlbumPeak)
	assert.InDelta(t, 0.0, *got.AlbumPeak, 1e-9)
}

func TestReadGenericUnparseableFieldLeftAbsent(t *testing.T) {
	st := newMemStore()
	st.set(keyTrackGain, "loud")
	st.set(keyTrackPeak, "1.000000")

	tg := newStoreTagger("test.flac", familyGeneric, types.DefaultTagConfig(), st)
	got := reread(tg)

	assert.Nil(t, got.Loudness)
	require.NotNil(t, got.Peak)
}

func TestWriteGenericReplacesStaleKeys(t *testing.T) {
	st := newMemStore()
	st.set(keyRefLevel, "89.0 dB")
	st.set(keyR128TrackGain, "1280")
	st.set("TITLE", "Song")

	tg := newStoreTagger("test.flac", familyGeneric, types.DefaultTagConfig(), st)
	tg.gain = types.GainInfo{
		Loudness:      types.Float(-13.0),
		Peak:          types.Float(0.0),
		AlbumLoudness: types.Float(-12.0),
		AlbumPeak:     types.Float(0.0),
	}
	tg.writeGeneric()

	assert.ElementsMatch(t, []string{
		"TITLE", keyTrackGain, keyTrackPeak, keyAlbumGain, keyAlbumPeak,
	}, st.keys())

	v, ok := st.get(keyTrackGain)
	require.True(t, ok)
	assert.Equal(t, "-5.00 dB", v)
}

func TestWriteGenericTrackOnly(t *testing.T) {
	st := newMemStore()
	tg := newStoreTagger("test.flac", familyGeneric, types.DefaultTagConfig(), st)
	tg.gain = types.GainInfo{
		Loudness: types.Float(-13.0),
		Peak:     types.Float(0.0),
	}
	tg.writeGeneric()

	assert.ElementsMatch(t, []string{keyTrackGain, keyTrackPeak}, st.keys())
}
