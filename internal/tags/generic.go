package tags

import "github.com/kepstin/regainer/internal/gain"

// The generic family covers every container with flat key/value comments:
// FLAC and Ogg Vorbis comments, WAV and AIFF info chunks. Only the text
// scheme applies, with exact-case keys and no policy branching.

func (t *Tagger) readGeneric() {
	if v, ok := t.store.get(keyTrackGain); ok {
		if t.gain.Loudness == nil {
			if l, ok := gain.ParseGain(v); ok {
				t.gain.Loudness = &l
			}
		}
	}

	if v, ok := t.store.get(keyTrackPeak); ok {
		if t.gain.Peak == nil {
			if p, ok := gain.ParsePeak(v); ok {
				t.gain.Peak = &p
			}
		}
	}

	if v, ok := t.store.get(keyAlbumGain); ok {
		if t.gain.AlbumLoudness == nil {
			if l, ok := gain.ParseGain(v); ok {
				t.gain.AlbumLoudness = &l
			}
		}
	}

	if v, ok := t.store.get(keyAlbumPeak); ok {
		if t.gain.AlbumPeak == nil {
			if p, ok := gain.ParsePeak(v); ok {
				t.gain.AlbumPeak = &p
			}
		}
	}
}

func (t *Tagger) writeGeneric() {
	t.deleteCommentGainTags()
	t.setReplayGainComments()
}

// deleteCommentGainTags removes every known gain key: the four text-scheme
// keys, the legacy reference-loudness key, and the R128 keys (which should
// never appear outside Opus, but stale tags happen).
func (t *Tagger) deleteCommentGainTags() {
	for _, key := range []string{
		keyTrackGain,
		keyTrackPeak,
		keyAlbumGain,
		keyAlbumPeak,
		keyRefLevel,
		keyR128TrackGain,
		keyR128AlbumGain,
	} {
		t.store.del(key)
	}
}

// setReplayGainComments emits the text scheme for every present field.
func (t *Tagger) setReplayGainComments() {
	if t.gain.Loudness != nil {
		t.store.set(keyTrackGain, gain.FormatGain(*t.gain.Loudness))
	}

	if t.gain.Peak != nil {
		t.store.set(keyTrackPeak, gain.FormatPeak(*t.gain.Peak))
	}

	if t.gain.AlbumLoudness != nil {
		t.store.set(keyAlbumGain, gain.FormatGain(*t.gain.AlbumLoudness))
	}

	if t.gain.AlbumPeak != nil {
		t.store.set(keyAlbumPeak, gain.FormatPeak(*t.gain.AlbumPeak))
	}
}
