package tags

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// store is the slice of a tag container the comment-keyed families need:
// flat string-keyed access plus a commit. ID3 is frame-structured and is
// handled separately.
type store interface {
	get(key string) (string, bool)
	set(key, value string)
	del(key string)
	keys() []string
	save() error
	close() error
}

// fileStore backs the store interface with the container's property map.
// The map is read once at open; set and del stage changes that save commits
// in a single write, leaving untouched keys alone.
type fileStore struct {
	filename string
	tags     map[string][]string
	dirty    map[string][]string
}

func newFileStore(filename string) (*fileStore, error) {
	m, err := taglib.ReadTags(filename)
	if err != nil {
		return nil, fmt.Errorf("read tags of %s: %w", filename, err)
	}

	return &fileStore{
		filename: filename,
		tags:     m,
		dirty:    make(map[string][]string),
	}, nil
}

func (s *fileStore) get(key string) (string, bool) {
	values := s.tags[key]
	if len(values) == 0 {
		return "", false
	}

	return values[0], true
}

func (s *fileStore) set(key, value string) {
	s.tags[key] = []string{value}
	s.dirty[key] = []string{value}
}

func (s *fileStore) del(key string) {
	if _, ok := s.tags[key]; !ok {
		return
	}

	delete(s.tags, key)
	// An empty value list removes the key on write.
	s.dirty[key] = nil
}

func (s *fileStore) keys() []string {
	out := make([]string, 0, len(s.tags))
	for key := range s.tags {
		out = append(out, key)
	}

	return out
}

func (s *fileStore) save() error {
	if len(s.dirty) == 0 {
		return nil
	}

	if err := taglib.WriteTags(s.filename, s.dirty, 0); err != nil {
		return fmt.Errorf("write tags of %s: %w", s.filename, err)
	}

	s.dirty = make(map[string][]string)

	return nil
}

func (s *fileStore) close() error {
	return nil
}
