package tags

import (
	"strings"

	"github.com/kepstin/regainer/internal/gain"
)

// MP4 stores gain values in freeform "----" atoms under the com.apple.iTunes
// mean. These are the tags used by foobar2000, and are compatible with
// rockbox. The container layer translates the atoms to bare property names,
// so the family matches names case-insensitively on read and writes the
// canonical upper-case spelling back.

// mp4GainName matches a property key against the gain-tag names, any case,
// returning the lower-cased name, or "" when the key is not one of ours.
func mp4GainName(key string) string {
	switch name := strings.ToLower(key); name {
	case strings.ToLower(keyTrackGain),
		strings.ToLower(keyTrackPeak),
		strings.ToLower(keyAlbumGain),
		strings.ToLower(keyAlbumPeak):
		return name
	}

	return ""
}

func (t *Tagger) readMP4() {
	for _, key := range t.store.keys() {
		name := mp4GainName(key)
		if name == "" {
			continue
		}

		value, ok := t.store.get(key)
		if !ok {
			continue
		}

		switch name {
		case strings.ToLower(keyTrackGain):
			if t.gain.Loudness == nil {
				if l, ok := gain.ParseGain(value); ok {
					t.gain.Loudness = &l
				}
			}
		case strings.ToLower(keyTrackPeak):
			if t.gain.Peak == nil {
				if p, ok := gain.ParsePeak(value); ok {
					t.gain.Peak = &p
				}
			}
		case strings.ToLower(keyAlbumGain):
			if t.gain.AlbumLoudness == nil {
				if l, ok := gain.ParseGain(value); ok {
					t.gain.AlbumLoudness = &l
				}
			}
		case strings.ToLower(keyAlbumPeak):
			if t.gain.AlbumPeak == nil {
				if p, ok := gain.ParsePeak(value); ok {
					t.gain.AlbumPeak = &p
				}
			}
		}
	}
}

func (t *Tagger) writeMP4() {
	for _, key := range t.store.keys() {
		if mp4GainName(key) != "" {
			t.store.del(key)
		}
	}

	t.store.del(keyRefLevel)

	t.setReplayGainComments()
}
