package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned when no object is stored under a digest. It wraps
// os.ErrNotExist so callers may test for either.
var ErrNotFound = fmt.Errorf("object not found: %w", os.ErrNotExist)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
//
// Objects are immutable. Writing to a digest that already holds an object is
// a no-op, so the first writer wins.
type Store struct {
	root string

	codecOnce sync.Once
	codecErr  error
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) codec() error {
	s.codecOnce.Do(func() {
		s.enc, s.codecErr = zstd.NewWriter(nil)
		if s.codecErr != nil {
			return
		}
		s.dec, s.codecErr = zstd.NewReader(nil)
	})
	return s.codecErr
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object under its content hash and returns that hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	return s.WriteAs(HashObject(objType, data), objType, data)
}

// WriteAs stores an object under a caller-chosen digest. This is how a
// source file's composite tree is keyed by the file's raw content digest.
//
// The on-disk format is the zstd-compressed envelope "type len\0content".
// Writes are atomic: data is written to a temp file and then renamed into
// place.
func (s *Store) WriteAs(h Hash, objType ObjectType, data []byte) (Hash, error) {
	if !h.Valid() {
		return "", fmt.Errorf("object write: invalid hash %q", h)
	}

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}
	if err := s.codec(); err != nil {
		return "", fmt.Errorf("object write codec: %w", err)
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)
	compressed := s.enc.EncodeAll(raw, nil)

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// A missing object yields an error matching ErrNotFound.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !h.Valid() {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	compressed, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	if err := s.codec(); err != nil {
		return "", nil, fmt.Errorf("object read codec: %w", err)
	}
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decompress: %w", h, err)
	}

	objType, content, err := parseEnvelope(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, content, nil
}

// parseEnvelope splits a decompressed "type len\0content" record.
func parseEnvelope(raw []byte) (ObjectType, []byte, error) {
	head, content, ok := bytes.Cut(raw, []byte{0})
	if !ok {
		return "", nil, errors.New("missing header terminator")
	}
	typ, size, ok := strings.Cut(string(head), " ")
	if !ok || typ == "" {
		return "", nil, fmt.Errorf("malformed header %q", head)
	}
	n, err := strconv.Atoi(size)
	if err != nil {
		return "", nil, fmt.Errorf("header length %q: %w", size, err)
	}
	if n != len(content) {
		return "", nil, fmt.Errorf("header says %d bytes, found %d", n, len(content))
	}
	return ObjectType(typ), content, nil
}

// ReadObject reads an object and decodes it according to its stored type.
func (s *Store) ReadObject(h Hash) (Object, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	obj, err := Unmarshal(objType, data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return obj, nil
}

// readTyped reads h and decodes it with unmarshal after checking the stored
// type against want.
func readTyped[T any](s *Store, h Hash, want ObjectType, unmarshal func([]byte) (T, error)) (T, error) {
	var zero T
	objType, data, err := s.Read(h)
	if err != nil {
		return zero, err
	}
	if objType != want {
		return zero, fmt.Errorf("object %s is a %s, not a %s", h.Short(), objType, want)
	}
	return unmarshal(data)
}

func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	return readTyped(s, h, TypeBlob, UnmarshalBlob)
}

// WriteTree stores tr under the digest of its canonical form.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// WriteTreeAs stores tr under h, for trees keyed by something other than
// their own content.
func (s *Store) WriteTreeAs(h Hash, tr *TreeObj) (Hash, error) {
	return s.WriteAs(h, TypeTree, MarshalTree(tr))
}

func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	return readTyped(s, h, TypeTree, UnmarshalTree)
}

func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	return readTyped(s, h, TypeCommit, UnmarshalCommit)
}
