package tags

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kepstin/regainer/internal/types"
)

// memStore is an in-memory store for exercising the comment-keyed families
// without container files.
type memStore struct {
	m      map[string]string
	saved  bool
	closed bool
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]string)}
}

func (s *memStore) get(key string) (string, bool) {
	v, ok := s.m[key]

	return v, ok
}

func (s *memStore) set(key, value string) {
	s.m[key] = value
}

func (s *memStore) del(key string) {
	delete(s.m, key)
}

func (s *memStore) keys() []string {
	out := make([]string, 0, len(s.m))
	for key := range s.m {
		out = append(out, key)
	}

	slices.Sort(out)

	return out
}

func (s *memStore) save() error {
	s.saved = true

	return nil
}

func (s *memStore) close() error {
	s.closed = true

	return nil
}

func newStoreTagger(filename string, fam family, cfg types.TagConfig, st store) *Tagger {
	return &Tagger{
		filename: filename,
		cfg:      cfg,
		fam:      fam,
		store:    st,
		opened:   true,
	}
}

// reread resets the merge state and reads the current tags again, the way
// Read does after open.
func reread(tg *Tagger) types.GainInfo {
	tg.gain = types.GainInfo{}
	tg.needTrackUpdate = false
	tg.needAlbumUpdate = false
	tg.readCurrent()

	return tg.gain
}

func TestWriteRequiresRead(t *testing.T) {
	tg := New("missing.flac", types.DefaultTagConfig())

	err := tg.Write(types.GainInfo{})
	require.ErrorIs(t, err, ErrNotRead)
}

func TestUnknownContainerError(t *testing.T) {
	err := &UnknownContainerError{Filename: "notes.txt"}
	assert.Equal(t, "unable to determine tag format for file: notes.txt", err.Error())
}

func TestAlbumTagsFlagTrackUpdate(t *testing.T) {
	st := newMemStore()
	st.set("REPLAYGAIN_ALBUM_GAIN", "-6.00 dB")
	st.set("REPLAYGAIN_ALBUM_PEAK", "1.000000")

	tg := newStoreTagger("a.flac", familyGeneric, types.DefaultTagConfig(), st)
	reread(tg)

	assert.True(t, tg.NeedTrackUpdate())
	assert.False(t, tg.NeedAlbumUpdate())
}

func TestCloseIsIdempotent(t *testing.T) {
	st := newMemStore()
	tg := newStoreTagger("a.flac", familyGeneric, types.DefaultTagConfig(), st)

	require.NoError(t, tg.Close())
	assert.True(t, st.closed)
	require.NoError(t, tg.Close())
}
