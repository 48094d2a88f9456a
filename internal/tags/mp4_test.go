package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kepstin/regainer/internal/types"
)

func TestMP4GainName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"REPLAYGAIN_TRACK_GAIN", "replaygain_track_gain"},
		{"replaygain_album_peak", "replaygain_album_peak"},
		{"Replaygain_Track_Peak", "replaygain_track_peak"},
		{"REPLAYGAIN_ALBUM_GAIN", "replaygain_album_gain"},
		{"MUSICBRAINZ_TRACKID", ""},
		{"REPLAYGAIN_REFERENCE_LOUDNESS", ""},
		{"TITLE", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, mp4GainName(tc.key))
		})
	}
}

func TestReadMP4(t *testing.T) {
	st := newMemStore()
	st.set("REPLAYGAIN_TRACK_GAIN", "-5.00 dB")
	st.set("replaygain_track_peak", "1.000000")
	st.set("MUSICBRAINZ_TRACKID", "0197ff20")

	tg := newStoreTagger("test.m4a", familyMP4, types.DefaultTagConfig(), st)
	got := reread(tg)

	require.NotNil(t, got.Loudness)
	assert.InDelta(t, -13.0, *got.Loudness, 1e-9)
	require.NotNil(t, got.Peak)
	assert.InDelta(t, 0.0, *got.Peak, 1e-9)
	assert.Nil(t, got.AlbumLoudness)
}

func TestWriteMP4(t *testing.T) {
	st := newMemStore()
	st.set("replaygain_track_gain", "-2.00 dB")
	st.set("REPLAYGAIN_REFERENCE_LOUDNESS", "89.0 dB")
	st.set("MUSICBRAINZ_TRACKID", "0197ff20")

	tg := newStoreTagger("test.m4a", familyMP4, types.DefaultTagConfig(), st)
	tg.gain = types.GainInfo{
		Loudness:      types.Float(-13.0),
		Peak:          types.Float(0.0),
		AlbumLoudness: types.Float(-12.0),
		AlbumPeak:     types.Float(0.0),
	}
	tg.writeMP4()

	assert.ElementsMatch(t, []string{
		"MUSICBRAINZ_TRACKID",
		"REPLAYGAIN_TRACK_GAIN",
		"REPLAYGAIN_TRACK_PEAK",
		"REPLAYGAIN_ALBUM_GAIN",
		"REPLAYGAIN_ALBUM_PEAK",
	}, st.keys())

	v, ok := st.get("REPLAYGAIN_TRACK_GAIN")
	require.True(t, ok)
	assert.Equal(t, "-5.00 dB", v)
}
