// Package tags reconciles ReplayGain metadata across the competing tag
// schemes of each container family.
//
// A Tagger reads every scheme it knows for the container, merges the values
// into a single GainInfo (first scheme read wins per field), and tracks
// whether the on-disk tags need rewriting because they disagree with the
// configured policy or use non-canonical key spelling. Writing always deletes
// every known gain tag first and emits only the policy-selected scheme(s).
package tags

import (
	"errors"
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/simonhull/audiometa"

	"github.com/kepstin/regainer/internal/types"
)

// ErrNotRead is returned by Write when Read has not completed successfully
// for the same file.
var ErrNotRead = errors.New("tags: write requires a prior successful read")

// UnknownContainerError indicates a file with no recognizable tag storage.
type UnknownContainerError struct {
	Filename string
}

func (e *UnknownContainerError) Error() string {
	return "unable to determine tag format for file: " + e.Filename
}

// family is the closed set of container families with distinct tag schemes.
type family int

const (
	familyGeneric family = iota // Vorbis-comment style key/value tags
	familyID3                   // TXXX + RVA2 frames
	familyOpus                  // R128 fixed-point tags alongside REPLAYGAIN
	familyMP4                   // iTunes-style freeform atoms
)

// Tagger reads and writes the gain tags of a single file. Not safe for
// concurrent use; each Track owns exactly one.
type Tagger struct {
	filename string
	cfg      types.TagConfig

	fam    family
	id3    *id3v2.Tag // familyID3 only
	store  store      // all other families
	opened bool

	gain            types.GainInfo
	needTrackUpdate bool
	needAlbumUpdate bool
}

// New returns a Tagger for the given file. The file is not touched until
// Read is called.
func New(filename string, cfg types.TagConfig) *Tagger {
	return &Tagger{
		filename: filename,
		cfg:      cfg,
	}
}

// Read opens the file, determines its container family and merges all known
// gain tags into one GainInfo. Individual tag values that fail to parse are
// left absent; a file with no recognizable tag storage is an error.
func (t *Tagger) Read() (types.GainInfo, error) {
	t.gain = types.GainInfo{}
	t.needTrackUpdate = false
	t.needAlbumUpdate = false

	if err := t.open(); err != nil {
		return types.GainInfo{}, err
	}

	t.readCurrent()

	return t.gain, nil
}

func (t *Tagger) readCurrent() {
	switch t.fam {
	case familyID3:
		t.readID3()
	case familyOpus:
		t.readOpus()
	case familyMP4:
		t.readMP4()
	case familyGeneric:
		t.readGeneric()
	}

	// Album tags mean the file took part in an album scan; flag it for
	// rewrite bookkeeping regardless of family.
	if t.gain.AlbumLoudness != nil || t.gain.AlbumPeak != nil {
		t.needTrackUpdate = true
	}
}

func (t *Tagger) open() error {
	if t.opened {
		_ = t.Close()
	}

	f, err := os.Open(t.filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.filename, err)
	}

	info, statErr := f.Stat()
	if statErr != nil {
		f.Close()

		return fmt.Errorf("stat %s: %w", t.filename, statErr)
	}

	format, detectErr := audiometa.DetectFormat(f, info.Size(), t.filename)
	f.Close()

	if detectErr != nil || format == audiometa.FormatUnknown {
		return &UnknownContainerError{Filename: t.filename}
	}

	switch format {
	case audiometa.FormatMP3:
		tag, openErr := id3v2.Open(t.filename, id3v2.Options{Parse: true})
		if openErr != nil {
			return fmt.Errorf("parse ID3 tag of %s: %w", t.filename, openErr)
		}

		t.fam = familyID3
		t.id3 = tag
	case audiometa.FormatOpus:
		if err := t.openStore(); err != nil {
			return err
		}

		t.fam = familyOpus
	case audiometa.FormatM4A, audiometa.FormatM4B:
		if err := t.openStore(); err != nil {
			return err
		}

		t.fam = familyMP4
	default:
		if err := t.openStore(); err != nil {
			return err
		}

		t.fam = familyGeneric
	}

	t.opened = true

	return nil
}

func (t *Tagger) openStore() error {
	st, err := newFileStore(t.filename)
	if err != nil {
		return err
	}

	t.store = st

	return nil
}

// Write replaces the file's gain tags with the given values, emitting the
// scheme(s) selected by the tagging policy, and saves the file.
func (t *Tagger) Write(g types.GainInfo) error {
	if !t.opened {
		return ErrNotRead
	}

	t.gain = g

	switch t.fam {
	case familyID3:
		t.writeID3()

		if err := t.id3.Save(); err != nil {
			return fmt.Errorf("save %s: %w", t.filename, err)
		}

		return nil
	case familyOpus:
		t.writeOpus()
	case familyMP4:
		t.writeMP4()
	case familyGeneric:
		t.writeGeneric()
	}

	if err := t.store.save(); err != nil {
		return fmt.Errorf("save %s: %w", t.filename, err)
	}

	return nil
}

// NeedTrackUpdate reports whether the last Read found track-level tags that
// should be rewritten (policy mismatch, stale scheme, or key case).
func (t *Tagger) NeedTrackUpdate() bool {
	return t.needTrackUpdate
}

// NeedAlbumUpdate reports whether the last Read found album-level tags that
// should be rewritten.
func (t *Tagger) NeedAlbumUpdate() bool {
	return t.needAlbumUpdate
}

// Close releases the underlying file handle. The Tagger may be reused; the
// next Read reopens the file.
func (t *Tagger) Close() error {
	t.opened = false

	if t.id3 != nil {
		tag := t.id3
		t.id3 = nil

		return tag.Close()
	}

	if t.store != nil {
		s := t.store
		t.store = nil

		return s.close()
	}

	return nil
}
