package tags

import (
	"strings"

	"github.com/bogem/id3v2"

	"github.com/kepstin/regainer/internal/gain"
	"github.com/kepstin/regainer/internal/types"
)

// Canonical TXXX descriptions for the text scheme. Matching on read is
// case-insensitive; a key that differs only in case gets rewritten.
const (
	keyTrackGain = "REPLAYGAIN_TRACK_GAIN"
	keyTrackPeak = "REPLAYGAIN_TRACK_PEAK"
	keyAlbumGain = "REPLAYGAIN_ALBUM_GAIN"
	keyAlbumPeak = "REPLAYGAIN_ALBUM_PEAK"
	keyRefLevel  = "REPLAYGAIN_REFERENCE_LOUDNESS" // legacy, delete-only
)

func (t *Tagger) readID3() {
	var needUpdate, haveReplayGain, haveRVA2 bool

	// The text scheme loads first and wins over RVA2 data.
	for _, framer := range t.id3.GetFrames("TXXX") {
		frame, ok := framer.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}

		switch strings.ToLower(frame.Description) {
		case strings.ToLower(keyTrackGain):
			if t.gain.Loudness == nil {
				if v, ok := gain.ParseGain(frame.Value); ok {
					t.gain.Loudness = &v
				}
			}

			haveReplayGain = true
			if frame.Description != keyTrackGain {
				needUpdate = true
			}
		case strings.ToLower(keyTrackPeak):
			if t.gain.Peak == nil {
				if v, ok := gain.ParsePeak(frame.Value); ok {
					t.gain.Peak = &v
				}
			}

			haveReplayGain = true
			if frame.Description != keyTrackPeak {
				needUpdate = true
			}
		case strings.ToLower(keyAlbumGain):
			if t.gain.AlbumLoudness == nil {
				if v, ok := gain.ParseGain(frame.Value); ok {
					t.gain.AlbumLoudness = &v
				}
			}

			haveReplayGain = true
			if frame.Description != keyAlbumGain {
				needUpdate = true
			}
		case strings.ToLower(keyAlbumPeak):
			if t.gain.AlbumPeak == nil {
				if v, ok := gain.ParsePeak(frame.Value); ok {
					t.gain.AlbumPeak = &v
				}
			}

			haveReplayGain = true
			if frame.Description != keyAlbumPeak {
				needUpdate = true
			}
		}
	}

	// Fall back to the legacy RVA2 frames only for fields still missing.
	// Only the master-volume channel counts.
	for _, framer := range t.id3.GetFrames("RVA2") {
		frame, ok := framer.(id3v2.UnknownFrame)
		if !ok {
			continue
		}

		rec, err := decodeRVA2(frame.Body)
		if err != nil || rec.channel != rva2MasterChannel {
			continue
		}

		switch rec.ident {
		case "track":
			if t.gain.Loudness == nil || t.gain.Peak == nil {
				loudness := gain.ReplayGainRef - rec.gainDB
				peak := gain.RVA2PeakDB(rec.peak)
				t.gain.Loudness = &loudness
				t.gain.Peak = &peak
			}

			haveRVA2 = true
		case "album":
			if t.gain.AlbumLoudness == nil || t.gain.AlbumPeak == nil {
				loudness := gain.ReplayGainRef - rec.gainDB
				peak := gain.RVA2PeakDB(rec.peak)
				t.gain.AlbumLoudness = &loudness
				t.gain.AlbumPeak = &peak
			}

			haveRVA2 = true
		}
	}

	wantRVA2 := t.cfg.ID3 == types.ID3RVA2 || t.cfg.ID3 == types.ID3Compatible
	wantReplayGain := t.cfg.ID3 == types.ID3ReplayGain || t.cfg.ID3 == types.ID3Compatible

	if haveRVA2 != wantRVA2 {
		needUpdate = true
	}

	if haveReplayGain != wantReplayGain {
		needUpdate = true
	}

	t.needTrackUpdate = needUpdate
	t.needAlbumUpdate = needUpdate
}

func (t *Tagger) writeID3() {
	t.id3.SetVersion(4)

	t.deleteID3GainFrames()

	if t.cfg.ID3 == types.ID3ReplayGain || t.cfg.ID3 == types.ID3Compatible {
		if t.gain.Loudness != nil {
			t.addTXXX(keyTrackGain, gain.FormatGain(*t.gain.Loudness))
		}

		if t.gain.Peak != nil {
			t.addTXXX(keyTrackPeak, gain.FormatPeak(*t.gain.Peak))
		}

		if t.gain.AlbumLoudness != nil {
			t.addTXXX(keyAlbumGain, gain.FormatGain(*t.gain.AlbumLoudness))
		}

		if t.gain.AlbumPeak != nil {
			t.addTXXX(keyAlbumPeak, gain.FormatPeak(*t.gain.AlbumPeak))
		}
	}

	if t.cfg.ID3 == types.ID3RVA2 || t.cfg.ID3 == types.ID3Compatible {
		// An RVA2 frame needs both a gain and a peak.
		if t.gain.Loudness != nil && t.gain.Peak != nil {
			body := encodeRVA2("track",
				gain.ReplayGainRef-*t.gain.Loudness,
				gain.RVA2Peak(t.filename, *t.gain.Peak, "track"))
			t.id3.AddFrame("RVA2", id3v2.UnknownFrame{Body: body})
		}

		if t.gain.AlbumLoudness != nil && t.gain.AlbumPeak != nil {
			body := encodeRVA2("album",
				gain.ReplayGainRef-*t.gain.AlbumLoudness,
				gain.RVA2Peak(t.filename, *t.gain.AlbumPeak, "album"))
			t.id3.AddFrame("RVA2", id3v2.UnknownFrame{Body: body})
		}
	}
}

// deleteID3GainFrames removes every known gain frame while preserving
// unrelated TXXX and RVA2 entries (MusicBrainz IDs, other volume sets, ...).
func (t *Tagger) deleteID3GainFrames() {
	var keepTXXX []id3v2.UserDefinedTextFrame

	for _, framer := range t.id3.GetFrames("TXXX") {
		frame, ok := framer.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}

		switch strings.ToLower(frame.Description) {
		case strings.ToLower(keyTrackGain),
			strings.ToLower(keyTrackPeak),
			strings.ToLower(keyAlbumGain),
			strings.ToLower(keyAlbumPeak),
			strings.ToLower(keyRefLevel):
		default:
			keepTXXX = append(keepTXXX, frame)
		}
	}

	t.id3.DeleteFrames("TXXX")

	for _, frame := range keepTXXX {
		t.id3.AddFrame("TXXX", frame)
	}

	var keepRVA2 []id3v2.UnknownFrame

	for _, framer := range t.id3.GetFrames("RVA2") {
		frame, ok := framer.(id3v2.UnknownFrame)
		if !ok {
			continue
		}

		rec, err := decodeRVA2(frame.Body)
		if err == nil && (rec.ident == "track" || rec.ident == "album") {
			continue
		}

		keepRVA2 = append(keepRVA2, frame)
	}

	t.id3.DeleteFrames("RVA2")

	for _, frame := range keepRVA2 {
		t.id3.AddFrame("RVA2", frame)
	}
}

func (t *Tagger) addTXXX(description, value string) {
	t.id3.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingISO,
		Description: description,
		Value:       value,
	})
}
