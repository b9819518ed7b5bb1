package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFile is the name of the ignore file read from the base path.
const IgnoreFile = ".proseignore"

// IgnoreChecker determines if a path should be ignored.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // pattern contains a slash, so match against full path
}

// NewIgnoreChecker creates an IgnoreChecker for the given directory. It
// always ignores .prose/ and .git/. If a .proseignore file exists in dir,
// its patterns are parsed and applied.
func NewIgnoreChecker(dir string) *IgnoreChecker {
	ic := &IgnoreChecker{
		patterns: []ignorePattern{
			{pattern: DirName, dirOnly: true},
			{pattern: ".git", dirOnly: true},
		},
	}

	f, err := os.Open(filepath.Join(dir, IgnoreFile))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseLine(scanner.Text()); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	return ic
}

// parseLine parses a single line from an ignore file. Returns nil if the
// line is empty, a comment, or not a valid pattern.
func parseLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	// A leading slash anchors the pattern to the root.
	if strings.HasPrefix(line, "/") {
		line = strings.TrimLeft(line, "/")
		p.hasSlash = true
	}
	if line == "" || !doublestar.ValidatePattern(line) {
		return nil
	}
	p.hasSlash = p.hasSlash || strings.Contains(line, "/")
	p.pattern = line
	return p
}

// IsIgnored checks whether a relative path should be ignored. The path should
// use forward slashes and be relative to the directory the checker was built
// for; isDir says whether it names a directory. A path is also ignored when
// one of its parent directories is.
//
// Last matching pattern wins (to support negation).
func (ic *IgnoreChecker) IsIgnored(p string, isDir bool) bool {
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "" || p == "." {
		return false
	}

	ignored := false
	for _, pat := range ic.patterns {
		if pat.matches(p, isDir) {
			ignored = !pat.negated
		}
	}
	return ignored
}

// matches reports whether the pattern selects p or one of its ancestors.
// Ancestors are directories; p itself only meets a directory-only pattern
// when isDir is set.
func (pat *ignorePattern) matches(p string, isDir bool) bool {
	if (isDir || !pat.dirOnly) && pat.match(p) {
		return true
	}
	for cur := path.Dir(p); cur != "." && cur != "" && cur != "/"; cur = path.Dir(cur) {
		if pat.match(cur) {
			return true
		}
	}
	return false
}

func (pat *ignorePattern) match(target string) bool {
	if !pat.hasSlash {
		target = path.Base(target)
	}
	ok, _ := doublestar.Match(pat.pattern, target)
	return ok
}
