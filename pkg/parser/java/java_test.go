package java

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/odvcencio/prose/pkg/parser"
)

const calculatorSrc = `package com.example;

/**
 * A calculator.
 */
public class Calculator {
    public Calculator() {
    }

    /**
     * Adds.
     */
    public int add(int a, int b) {
        return a + b;
    }

    public int sub(int a, int b) {
        return a - b;
    }
}
`

func TestParseClass(t *testing.T) {
	f, err := New().Parse("src/main/java/com/example/Calculator.java", []byte(calculatorSrc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Name != "Calculator.java" {
		t.Errorf("Name = %q, want Calculator.java", f.Name)
	}
	c := f.Class
	if c == nil {
		t.Fatal("Class = nil")
	}
	if c.Package != "com.example" {
		t.Errorf("Package = %q, want com.example", c.Package)
	}
	if c.Name != "Calculator" {
		t.Errorf("Name = %q, want Calculator", c.Name)
	}
	if c.Signature != "public class Calculator" {
		t.Errorf("Signature = %q", c.Signature)
	}
	if c.Start != (parser.Point{Row: 5, Column: 0}) {
		t.Errorf("Start = %+v, want {5 0}", c.Start)
	}
	if c.IsInterface {
		t.Error("IsInterface = true for a class")
	}
	if diff := cmp.Diff([]string{"/**", " * A calculator.", " */"}, c.Comment); diff != "" {
		t.Errorf("class comment (-want +got):\n%s", diff)
	}
	if len(c.Digest) != 64 {
		t.Errorf("Digest = %q, want sha256 hex", c.Digest)
	}

	type summary struct {
		Name, Signature string
		Start           parser.Point
		HasComment      bool
	}
	var got []summary
	for _, m := range c.Methods {
		got = append(got, summary{m.Name, m.Signature, m.Start, m.Comment != nil})
	}
	want := []summary{
		{"Calculator", "public Calculator()", parser.Point{Row: 6, Column: 4}, false},
		{"add", "public int add(int a, int b)", parser.Point{Row: 12, Column: 4}, true},
		{"sub", "public int sub(int a, int b)", parser.Point{Row: 16, Column: 4}, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("methods (-want +got):\n%s", diff)
	}

	add := c.Methods[1]
	wantCode := []string{"    public int add(int a, int b) {", "        return a + b;", "    }"}
	if diff := cmp.Diff(wantCode, add.Code); diff != "" {
		t.Errorf("add code (-want +got):\n%s", diff)
	}
	if add.Digest == c.Methods[2].Digest {
		t.Error("different methods share a digest")
	}
}

func TestParseMethodDigestIgnoresComment(t *testing.T) {
	commented := strings.Replace(calculatorSrc, "    public int sub", "    /**\n     * Subtracts.\n     */\n    public int sub", 1)
	a, err := New().Parse("Calculator.java", []byte(calculatorSrc))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New().Parse("Calculator.java", []byte(commented))
	if err != nil {
		t.Fatal(err)
	}
	if a.Class.Methods[2].Digest != b.Class.Methods[2].Digest {
		t.Error("adding a Javadoc changed the method digest")
	}
	if b.Class.Methods[2].Comment == nil {
		t.Error("new Javadoc not picked up")
	}
}

func TestParseInterface(t *testing.T) {
	src := "package p;\n\npublic interface Shape {\n    double area();\n}\n"
	f, err := New().Parse("Shape.java", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Class == nil || !f.Class.IsInterface {
		t.Fatalf("Class = %+v, want interface", f.Class)
	}
	if len(f.Class.Methods) != 1 || f.Class.Methods[0].Signature != "double area()" {
		t.Errorf("Methods = %+v", f.Class.Methods)
	}
}

func TestParseNoClass(t *testing.T) {
	for _, src := range []string{"", "package p;\n", "// nothing here\n"} {
		f, err := New().Parse("Empty.java", []byte(src))
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		if f.Class != nil {
			t.Errorf("Parse(%q).Class = %+v, want nil", src, f.Class)
		}
	}
}

func TestParseRejectsOtherLanguages(t *testing.T) {
	for _, name := range []string{"notes.txt", "x.py", "Main.kt", "README"} {
		if f, err := New().Parse(name, []byte("hello")); err == nil {
			t.Errorf("Parse(%q) = %+v, want an error", name, f)
		}
	}
}

func TestParseIgnoresPlainBlockComment(t *testing.T) {
	src := "/* not javadoc */\npublic class A {\n}\n"
	f, err := New().Parse("A.java", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if f.Class.Comment != nil {
		t.Errorf("Comment = %q, want nil", f.Class.Comment)
	}
}

func TestMatch(t *testing.T) {
	p := New()
	if !p.Match("Foo.java") {
		t.Error("Match(Foo.java) = false")
	}
	for _, name := range []string{"Foo.kt", "Foo.java.bak", "README"} {
		if p.Match(name) {
			t.Errorf("Match(%q) = true", name)
		}
	}
}

func TestTestPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"src/main/java/com/x/Foo.java", "src/test/java/com/x/TestFoo.java"},
		{"Foo.java", "TestFoo.java"},
		{"src/domain/Foo.java", "src/domain/TestFoo.java"},
		// only the first segment named exactly "main"
		{"mainline/main/app/main/Foo.java", "mainline/test/app/main/TestFoo.java"},
		{"src/main/Main.java", "src/test/TestMain.java"},
	}
	for _, tt := range tests {
		got := New().TestPath(filepath.FromSlash(tt.in))
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("TestPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/test/java/demo/TestCalc.java", true},
		{"test/Foo.java", true},
		{"src/main/java/demo/Calc.java", false},
		{"src/main/java/demo/TestUtils.java", false},
		{"src/testing/Foo.java", false},
		{"Foo.java", false},
	}
	p := New()
	for _, tt := range tests {
		if got := p.IsTest(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("IsTest(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	// every test path is recognised as one
	for _, src := range []string{"src/main/java/demo/Calc.java", "app/main/X.java"} {
		if tp := p.TestPath(filepath.FromSlash(src)); !p.IsTest(tp) {
			t.Errorf("IsTest(TestPath(%q)) = false", src)
		}
	}
}

func TestTestStub(t *testing.T) {
	f := &parser.File{Name: "Calculator.java", Class: &parser.Class{Package: "com.example", Name: "Calculator"}}
	want := []string{
		"package com.example;",
		"",
		"import org.junit.Test;",
		"",
		"public class TestCalculator",
		"{",
		"}",
		"",
	}
	if diff := cmp.Diff(want, New().TestStub(f)); diff != "" {
		t.Errorf("stub (-want +got):\n%s", diff)
	}

	noPkg := New().TestStub(&parser.File{Name: "A.java", Class: &parser.Class{Name: "A"}})
	if noPkg[0] != "import org.junit.Test;" {
		t.Errorf("stub without package starts with %q", noPkg[0])
	}
}
