package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/prose/pkg/object"
)

func TestAddStagesGeneratedTree(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, calcPath, calcSrc)
	gen := &stubGenerator{}

	res := add(t, r, gen)
	if !res.Staged || !res.Pending {
		t.Errorf("first add: Staged=%v Pending=%v, want true true", res.Staged, res.Pending)
	}
	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want 3", gen.calls)
	}

	stage, err := r.ReadStage()
	if err != nil {
		t.Fatal(err)
	}
	if stage == nil || stage.Tree != res.Tree || stage.BasePath != "src" {
		t.Errorf("stage = %+v, want tree %s base src", stage, res.Tree.Short())
	}
}

func TestAddNothingToAdd(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "src/readme.txt", "no java here")

	_, err := r.Add(context.Background(), "src", &stubGenerator{})
	if !errors.Is(err, ErrNothingToAdd) {
		t.Errorf("Add: got %v, want ErrNothingToAdd", err)
	}
}

func TestAddRejectsPathOutsideBase(t *testing.T) {
	r := initRepo(t)
	if _, err := r.Add(context.Background(), "../elsewhere", &stubGenerator{}); err == nil {
		t.Error("Add outside the base path succeeded")
	}
}

func TestCommitIdempotent(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, calcPath, calcSrc)
	add(t, r, &stubGenerator{})

	first := commit(t, r, false)
	if _, err := r.Commit(false); !errors.Is(err, ErrNothingToCommit) {
		t.Fatalf("second Commit: got %v, want ErrNothingToCommit", err)
	}

	log, err := r.Log(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || string(log[0].Hash) != first {
		t.Errorf("log = %+v, want the single commit %s", log, first)
	}

	ref, err := r.LoadRef("main")
	if err != nil {
		t.Fatal(err)
	}
	if string(ref) != first {
		t.Errorf("main = %s, want %s", ref, first)
	}
}

func TestCommitNothingStaged(t *testing.T) {
	r := initRepo(t)
	if _, err := r.Commit(false); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("Commit: got %v, want ErrNothingStaged", err)
	}
	if _, err := r.MergeToDisk(); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("MergeToDisk: got %v, want ErrNothingStaged", err)
	}
	if _, _, err := r.Status(); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("Status: got %v, want ErrNothingStaged", err)
	}
}

func TestCommitChainsParents(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, calcPath, calcSrc)
	add(t, r, &stubGenerator{})
	first := commit(t, r, false)

	writeFile(t, r, calcPath, strings.Replace(calcSrc, "a + b", "b + a", 1))
	add(t, r, &stubGenerator{})
	second := commit(t, r, false)

	log, err := r.Log(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 {
		t.Fatalf("log has %d commits, want 2", len(log))
	}
	if string(log[0].Hash) != second || string(log[1].Hash) != first {
		t.Errorf("log order = %s, %s; want %s, %s", log[0].Hash, log[1].Hash, second, first)
	}
	if string(log[0].Commit.Parent) != first || log[1].Commit.Parent != "" {
		t.Errorf("parents = %q, %q", log[0].Commit.Parent, log[1].Commit.Parent)
	}

	limited, err := r.Log(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("Log(1) returned %d commits", len(limited))
	}
}

func TestCommitMergeWritesFilesAndSettles(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, calcPath, calcSrc)
	add(t, r, &stubGenerator{})
	commit(t, r, true)

	src := readFile(t, r, calcPath)
	if !strings.Contains(src, " * Calc does arithmetic.") || !strings.Contains(src, "     * Computes add.") {
		t.Errorf("merged source lacks generated comments:\n%s", src)
	}
	test := readFile(t, r, "src/test/java/demo/TestCalc.java")
	if !strings.Contains(test, "public void testAdd() {") || !strings.Contains(test, "package demo;") {
		t.Errorf("merged test file:\n%s", test)
	}

	gen := &stubGenerator{}
	res := add(t, r, gen)
	if res.Pending {
		t.Error("add after commit --merge is still pending")
	}
	if gen.calls != 0 {
		t.Errorf("add after merge made %d generator calls, want 0", gen.calls)
	}

	_, diffs, err := r.Status()
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range diffs {
		if d.Changed() {
			t.Errorf("%s %s still differs after merge:\n%s", d.Kind, d.Path, d.Diff)
		}
	}
}

func TestRepeatedMergeRoundsSettle(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, calcPath, calcSrc)
	add(t, r, &stubGenerator{})
	commit(t, r, true)

	for round := 1; round <= 3; round++ {
		gen := &stubGenerator{}
		res := add(t, r, gen)
		if res.Pending || gen.calls != 0 {
			t.Errorf("round %d: pending=%v generator calls=%d, want settled", round, res.Pending, gen.calls)
		}
		if _, err := r.Commit(true); !errors.Is(err, ErrNothingToCommit) {
			t.Errorf("round %d: Commit = %v, want ErrNothingToCommit", round, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(r.RootDir, "src", "test", "java", "demo"))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 1 || names[0] != "TestCalc.java" {
		t.Errorf("test directory holds %v, want only TestCalc.java", names)
	}
}

func TestCommitToleratesMissingTipCommit(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, calcPath, calcSrc)
	add(t, r, &stubGenerator{})

	missing := object.Hash(strings.Repeat("ab", 32))
	if err := r.SaveRef("main", missing); err != nil {
		t.Fatal(err)
	}
	h := commit(t, r, false)
	c, err := r.Store.ReadCommit(object.Hash(h))
	if err != nil {
		t.Fatal(err)
	}
	if c.Parent != missing {
		t.Errorf("parent = %s, want the dangling ref %s", c.Parent, missing)
	}
}
