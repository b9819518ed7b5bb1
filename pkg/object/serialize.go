package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries keep their order. Each entry is
// one line:
//
//	kind digest "name"
//
// The name is Go-quoted because unit signatures may contain spaces and
// newlines.
func MarshalTree(tr *TreeObj) []byte {
	var buf bytes.Buffer
	for _, e := range tr.Entries {
		fmt.Fprintf(&buf, "%s %s %s\n", e.Kind, string(e.Digest), strconv.Quote(e.Name))
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		kind := EntryKind(parts[0])
		if !kind.valid() {
			return nil, fmt.Errorf("unmarshal tree: unknown kind %q", parts[0])
		}
		name, err := strconv.Unquote(parts[2])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: bad name %s: %w", parts[2], err)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Kind:   kind,
			Digest: Hash(parts[1]),
			Name:   name,
		})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	base_path "P"
//	parent H     (omitted for the first commit)
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	fmt.Fprintf(&buf, "base_path %s\n", strconv.Quote(c.BasePath))
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	c := &CommitObj{}
	text := strings.TrimRight(string(data), "\n")
	for _, line := range strings.Split(text, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "base_path":
			p, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad base_path %s: %w", val, err)
			}
			c.BasePath = p
		case "parent":
			c.Parent = Hash(val)
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: missing tree")
	}
	return c, nil
}

// Unmarshal decodes content according to its stored type.
func Unmarshal(objType ObjectType, data []byte) (Object, error) {
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(data)
	case TypeTree:
		return UnmarshalTree(data)
	case TypeCommit:
		return UnmarshalCommit(data)
	}
	return nil, fmt.Errorf("unmarshal: unknown object type %q", objType)
}
