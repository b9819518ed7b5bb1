package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored. It is written into the
// envelope of every object and is the discriminant used when decoding.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// EntryKind says what a TreeEntry points at.
type EntryKind string

const (
	KindTree    EntryKind = "tree"    // a source directory
	KindFile    EntryKind = "file"    // a source file, keyed by its raw content digest
	KindClass   EntryKind = "clazz"   // a class unit composite
	KindMethod  EntryKind = "method"  // a method unit composite
	KindComment EntryKind = "comment" // leaf: blob of commented text
	KindTest    EntryKind = "test"    // leaf: blob of test text
)

// IsLeaf reports whether entries of this kind reference blob content.
func (k EntryKind) IsLeaf() bool {
	return k == KindComment || k == KindTest
}

// IsUnit reports whether entries of this kind reference a structural unit.
func (k EntryKind) IsUnit() bool {
	return k == KindClass || k == KindMethod
}

func (k EntryKind) valid() bool {
	switch k {
	case KindTree, KindFile, KindClass, KindMethod, KindComment, KindTest:
		return true
	}
	return false
}

// Object is one decoded stored object: *Blob, *TreeObj or *CommitObj.
type Object interface {
	Type() ObjectType
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

func (*Blob) Type() ObjectType { return TypeBlob }

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Kind   EntryKind
	Digest Hash
	Name   string
}

// TreeObj holds an ordered list of tree entries. Order is significant and is
// preserved by serialization.
type TreeObj struct {
	Entries []TreeEntry
}

func (*TreeObj) Type() ObjectType { return TypeTree }

// CommitObj is an immutable snapshot of a staged tree, linked to the commit
// that was the branch tip when it was recorded.
type CommitObj struct {
	TreeHash Hash
	BasePath string // source directory the tree was built from
	Parent   Hash   // empty for the first commit on a branch
}

func (*CommitObj) Type() ObjectType { return TypeCommit }
