package repo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/prose/pkg/parser"
)

const calcPath = "src/main/java/demo/Calc.java"

const calcSrc = `package demo;

public class Calc {
    public int add(int a, int b) {
        return a + b;
    }
}
`

// stubGenerator writes fixed Javadoc and JUnit text and counts requests.
type stubGenerator struct {
	calls int
}

func (g *stubGenerator) CommentClass(_ context.Context, c *parser.Class) error {
	g.calls++
	c.Comment = []string{"/**", " * " + c.Name + " does arithmetic.", " */"}
	c.HasGeneratedComment = true
	return nil
}

func (g *stubGenerator) CommentMethod(_ context.Context, m *parser.Method) error {
	g.calls++
	m.Comment = []string{"/**", " * Computes " + m.Name + ".", " */"}
	m.HasGeneratedComment = true
	return nil
}

func (g *stubGenerator) TestMethod(_ context.Context, m *parser.Method) error {
	g.calls++
	name := "test" + strings.ToUpper(m.Name[:1]) + m.Name[1:]
	m.Tests = []parser.Test{{
		Signature: "public void " + name + "()",
		Code:      []string{"@Test", "public void " + name + "() {", "}"},
	}}
	m.HasGeneratedTests = true
	return nil
}

func initRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return r
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	path := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func add(t *testing.T, r *Repo, gen *stubGenerator) *AddResult {
	t.Helper()
	res, err := r.Add(context.Background(), "src", gen)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return res
}

func commit(t *testing.T, r *Repo, merge bool) string {
	t.Helper()
	h, err := r.Commit(merge)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return string(h)
}
