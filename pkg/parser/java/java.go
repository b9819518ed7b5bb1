// Package java extracts class and method units from Java sources with
// tree-sitter and supplies the Javadoc/JUnit prompts used to document and
// test them.
package java

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	gotreesitter "github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"
	classify "github.com/odvcencio/gts-suite/pkg/lang/treesitter"

	"github.com/odvcencio/prose/pkg/parser"
)

const (
	blockComment = "block_comment"
	endOfCode    = "}"
)

var (
	classTypes  = map[string]bool{"class_declaration": true, "interface_declaration": true}
	bodyTypes   = map[string]bool{"class_body": true, "interface_body": true}
	methodTypes = map[string]bool{"method_declaration": true, "constructor_declaration": true}
	methodBody  = map[string]bool{"block": true, "constructor_body": true, ";": true}

	commentTypes = classify.CommentNodeTypes
)

// Parser is the Java implementation of parser.Parser and parser.Prompter.
type Parser struct{}

var (
	_ parser.Parser   = Parser{}
	_ parser.Prompter = Parser{}
)

// New returns a Java parser.
func New() Parser { return Parser{} }

// Match reports whether name is a Java source file.
func (Parser) Match(name string) bool {
	return strings.HasSuffix(name, ".java")
}

// EndOfCode returns the closing brace that ends a test class.
func (Parser) EndOfCode() string { return endOfCode }

// TestPath maps src/main/.../Foo.java to src/test/.../TestFoo.java. Only the
// first directory segment named exactly "main" is replaced; a path without
// one keeps its directory.
func (Parser) TestPath(path string) string {
	dir, name := filepath.Split(path)
	segs := strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/")
	for i, s := range segs {
		if s == "main" {
			segs[i] = "test"
			break
		}
	}
	return filepath.Join(filepath.FromSlash(strings.Join(segs, "/")), "Test"+name)
}

// IsTest reports whether path sits under a "test" directory, the segment
// TestPath swaps in for "main".
func (Parser) IsTest(path string) bool {
	for _, s := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if s == "test" {
			return true
		}
	}
	return false
}

// TestStub returns a JUnit test class skeleton for f.
func (Parser) TestStub(f *parser.File) []string {
	var lines []string
	if f.Class != nil && f.Class.Package != "" {
		lines = append(lines, "package "+f.Class.Package+";", "")
	}
	name := strings.TrimSuffix(f.Name, ".java")
	if f.Class != nil && f.Class.Name != "" {
		name = f.Class.Name
	}
	return append(lines,
		"import org.junit.Test;",
		"",
		"public class Test"+name,
		"{",
		endOfCode,
		"",
	)
}

// Parse extracts the first top-level class or interface of src and its
// methods and constructors.
func (p Parser) Parse(path string, src []byte) (*parser.File, error) {
	f := &parser.File{Name: filepath.Base(path), Path: path}
	if !p.Match(f.Name) {
		return nil, fmt.Errorf("not a java source: %s", f.Name)
	}
	if len(src) == 0 {
		return f, nil
	}

	bt, err := grammars.ParseFile(f.Name, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer bt.Release()

	root := bt.RootNode()
	var pkg string
	var pending *gotreesitter.Node
	for i := 0; i < root.ChildCount(); i++ {
		child := root.Child(i)
		switch t := bt.NodeType(child); {
		case t == "package_declaration":
			pkg = packageName(bt, child)
			pending = nil
		case isComment(t):
			pending = child
		case classTypes[t]:
			f.Class = parseClass(bt, src, child, pending, pkg)
			return f, nil
		default:
			pending = nil
		}
	}
	return f, nil
}

func isComment(nodeType string) bool {
	return nodeType == blockComment || commentTypes[nodeType]
}

func packageName(bt *gotreesitter.BoundTree, n *gotreesitter.Node) string {
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		switch bt.NodeType(c) {
		case "identifier", "scoped_identifier":
			return bt.NodeText(c)
		}
	}
	return ""
}

func parseClass(bt *gotreesitter.BoundTree, src []byte, n, comment *gotreesitter.Node, pkg string) *parser.Class {
	var body *gotreesitter.Node
	c := &parser.Class{
		Package:     pkg,
		IsInterface: bt.NodeType(n) == "interface_declaration",
		Digest:      digest(src[n.StartByte():n.EndByte()]),
		Start:       startPoint(src, n),
		End:         endPoint(src, n),
		Comment:     javadoc(bt, comment),
	}
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch t := bt.NodeType(child); {
		case t == "identifier" && c.Name == "":
			c.Name = bt.NodeText(child)
		case bodyTypes[t]:
			body = child
		}
	}
	if body == nil {
		c.Signature = strings.TrimSpace(bt.NodeText(n))
		return c
	}
	c.Signature = strings.TrimSpace(string(src[n.StartByte():body.StartByte()]))

	var pending *gotreesitter.Node
	for i := 0; i < body.ChildCount(); i++ {
		child := body.Child(i)
		switch t := bt.NodeType(child); {
		case isComment(t):
			pending = child
		case methodTypes[t]:
			c.Methods = append(c.Methods, parseMethod(bt, src, child, pending))
			pending = nil
		default:
			pending = nil
		}
	}
	return c
}

func parseMethod(bt *gotreesitter.BoundTree, src []byte, n, comment *gotreesitter.Node) *parser.Method {
	m := &parser.Method{
		Digest:  digest(src[n.StartByte():n.EndByte()]),
		Start:   startPoint(src, n),
		End:     endPoint(src, n),
		Code:    wholeLines(src, n),
		Comment: javadoc(bt, comment),
	}
	sigEnd := n.EndByte()
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch t := bt.NodeType(child); {
		case t == "identifier" && m.Name == "":
			m.Name = bt.NodeText(child)
		case methodBody[t]:
			sigEnd = child.StartByte()
		}
	}
	m.Signature = strings.TrimSpace(string(src[n.StartByte():sigEnd]))
	return m
}

// javadoc returns the lines of comment when it is a well-formed Javadoc
// block, or nil.
func javadoc(bt *gotreesitter.BoundTree, comment *gotreesitter.Node) []string {
	if comment == nil {
		return nil
	}
	text := bt.NodeText(comment)
	if !javadocPattern.MatchString(text) {
		return nil
	}
	return strings.Split(text, "\n")
}

func digest(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func lineStart(src []byte, off uint32) int {
	return bytes.LastIndexByte(src[:off], '\n') + 1
}

func startPoint(src []byte, n *gotreesitter.Node) parser.Point {
	off := n.StartByte()
	return parser.Point{Row: int(n.StartPoint().Row), Column: int(off) - lineStart(src, off)}
}

func endPoint(src []byte, n *gotreesitter.Node) parser.Point {
	off := n.EndByte()
	return parser.Point{Row: int(n.EndPoint().Row), Column: int(off) - lineStart(src, off)}
}

// wholeLines returns the complete source lines spanned by n, including the
// indentation before its first byte.
func wholeLines(src []byte, n *gotreesitter.Node) []string {
	start := lineStart(src, n.StartByte())
	end := len(src)
	if i := bytes.IndexByte(src[n.EndByte():], '\n'); i >= 0 {
		end = int(n.EndByte()) + i
	}
	return strings.Split(string(src[start:end]), "\n")
}
