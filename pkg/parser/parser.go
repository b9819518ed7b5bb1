// Package parser defines the structural units extracted from a source file
// and the language contracts the tree builder and generator rely on.
package parser

// Point is a zero-based row and column in the original source.
type Point struct {
	Row    int
	Column int
}

// File is a parsed source file. Class is nil when no class or interface was
// found.
type File struct {
	Name  string // base name, e.g. "Foo.java"
	Path  string
	Class *Class
}

// Class is a class or interface unit.
type Class struct {
	Package   string
	Name      string
	Signature string
	Digest    string // digest of the class source text
	Start     Point
	End       Point

	// Comment holds the class documentation, either found in the source or
	// generated. HasGeneratedComment is set only in the latter case.
	Comment             []string
	HasGeneratedComment bool

	IsInterface bool
	Methods     []*Method
}

// Method is a method or constructor unit.
type Method struct {
	Name      string
	Signature string
	Digest    string // digest of the method source text
	Start     Point
	End       Point
	Code      []string

	Comment             []string
	HasGeneratedComment bool

	Tests             []Test
	HasGeneratedTests bool
}

// Test is one generated test method. Signature is the declaration line(s)
// and is used to detect a test already present in a test file.
type Test struct {
	Signature string
	Code      []string
}

// Parser extracts units from source files of one language.
type Parser interface {
	// Match reports whether the file name belongs to this language.
	Match(name string) bool
	// Parse extracts the class and its methods from src. A file with no
	// class yields a File with a nil Class and no error.
	Parse(path string, src []byte) (*File, error)
	// TestPath maps a source path to the path of its test file.
	TestPath(path string) string
	// IsTest reports whether path lies where TestPath writes tests, so it
	// is never read back as a source.
	IsTest(path string) bool
	// TestStub returns the lines of a new, empty test file for f.
	TestStub(f *File) []string
	// EndOfCode is the marker before which new tests are appended.
	EndOfCode() string
}

// Prompter builds generation prompts for a language and validates and
// cleans up the responses. Extract functions return ok=false when a
// response is unusable.
type Prompter interface {
	ClassCommentPrompt(c *Class) string
	MethodCommentPrompt(m *Method) string
	MethodTestsPrompt(m *Method) string
	ExtractComment(response string) ([]string, bool)
	ExtractTests(response string) ([]Test, bool)
}
