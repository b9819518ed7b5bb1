package tree

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/odvcencio/prose/pkg/object"
)

type visit struct {
	Kind object.EntryKind
	Path string
	Name string
	Unit string
}

func collect(t *testing.T, walkFn func(TreeReader, object.Hash, Visitor) error, store TreeReader, root object.Hash) []visit {
	t.Helper()
	var got []visit
	err := walkFn(store, root, func(l Leaf) error {
		v := visit{Kind: l.Entry.Kind, Path: filepath.ToSlash(l.Path()), Name: l.Entry.Name}
		if l.Unit != nil {
			v.Unit = l.Unit.Name
		}
		got = append(got, v)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return got
}

func TestWalkVisitsFileLeavesInOrder(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "src/pkg/sub/B.src", "class B\n  method b\n")
	fx.write(t, "src/pkg/A.src", "class A\n")
	root := fx.build(t, "src")

	want := []visit{
		{Kind: object.KindComment, Path: "pkg/sub/B.src", Name: "B.src"},
		{Kind: object.KindTest, Path: "pkg/sub/B.src", Name: "TestB.src"},
		{Kind: object.KindComment, Path: "pkg/A.src", Name: "A.src"},
		{Kind: object.KindTest, Path: "pkg/A.src", Name: "TestA.src"},
	}
	if diff := cmp.Diff(want, collect(t, Walk, fx.store, root)); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestWalkUnitsVisitsGeneratedText(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "src/A.src", "class A\n  method add\n")
	root := fx.build(t, "src")

	want := []visit{
		{Kind: object.KindComment, Path: "A.src", Name: "A", Unit: "class A"},
		{Kind: object.KindComment, Path: "A.src", Name: "method add", Unit: "method add"},
		{Kind: object.KindTest, Path: "A.src", Name: "test_add()", Unit: "method add"},
	}
	if diff := cmp.Diff(want, collect(t, WalkUnits, fx.store, root)); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestWalkMissingObjectsAreEmpty(t *testing.T) {
	store := object.NewStore(t.TempDir())
	missing := object.Hash(strings.Repeat("0", 64))

	blob, err := store.WriteBlob(&object.Blob{Data: []byte("text")})
	if err != nil {
		t.Fatal(err)
	}
	file, err := store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Kind: object.KindComment, Digest: blob, Name: "Kept.src"},
		{Kind: object.KindMethod, Digest: missing, Name: "method gone"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	root, err := store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Kind: object.KindTree, Digest: missing, Name: "lost"},
		{Kind: object.KindFile, Digest: missing, Name: "Lost.src"},
		{Kind: object.KindFile, Digest: file, Name: "Kept.src"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	want := []visit{{Kind: object.KindComment, Path: "Kept.src", Name: "Kept.src"}}
	if diff := cmp.Diff(want, collect(t, Walk, store, root)); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
	if got := collect(t, WalkUnits, store, root); len(got) != 0 {
		t.Errorf("WalkUnits over a missing unit visited %v", got)
	}
	if got := collect(t, Walk, store, missing); len(got) != 0 {
		t.Errorf("Walk of a missing root visited %v", got)
	}
}

func TestWalkStopsOnVisitorError(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "src/A.src", "class A\n")
	fx.write(t, "src/B.src", "class B\n")
	root := fx.build(t, "src")

	stop := errors.New("stop")
	calls := 0
	err := Walk(fx.store, root, func(Leaf) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk: got %v, want visitor error", err)
	}
	if calls != 1 {
		t.Errorf("visitor called %d times, want 1", calls)
	}
}
