package java

import (
	"regexp"
	"strings"

	"github.com/odvcencio/prose/pkg/parser"
)

const (
	docFramework  = "JAVADOC"
	testFramework = "JUNIT"
)

var classCommentPrompt = `
Comment the class below by summarizing the ` + docFramework + ` comments below.
Be sure to:
* Do not include too much details.
* Do not include any parameters or return.
* Do not include the class definition.
The final output must be a ` + docFramework + ` comment.
`

var methodCommentPrompt = `
Comment the method below using ` + docFramework + ` and by summarizing what the method do, not as steps but as a text.
Be sure to:
* Include always the list of parameters and return value at the end of the comment.
* Do not put the comments in the method body but only in the ` + docFramework + ` section.
* Do not include the function body in the response.
The final output must be a valid ` + docFramework + ` comment.
`

var methodTestsPrompt = `
Generate unit tests for the function below using ` + testFramework + ` framework.
Be sure to:
* Extract all generated methods and remove everything else.
* Do not include the import and class definition.
`

var (
	javadocPattern = regexp.MustCompile(`(?m)^\s*/\*\*\n(\s*\*.*\n)+\s*\*/`)
	// annotations, declaration, body
	testPattern = regexp.MustCompile(`((?:@.+\n)+)([^@][^(]+\([^)]*\)[\s|\w]*)\s*({\n[^@]*\n\s*})\n`)
)

// ClassCommentPrompt asks for a class summary built from the class
// signature and the comments of its methods.
func (Parser) ClassCommentPrompt(c *parser.Class) string {
	parts := []string{classCommentPrompt, "Class: " + c.Signature, ""}
	for _, m := range c.Methods {
		parts = append(parts, strings.Join(m.Comment, "\n")+"\n")
	}
	return strings.Join(parts, "\n")
}

// MethodCommentPrompt asks for a Javadoc comment for m.
func (Parser) MethodCommentPrompt(m *parser.Method) string {
	return strings.Join(append([]string{methodCommentPrompt}, m.Code...), "\n")
}

// MethodTestsPrompt asks for JUnit tests of m.
func (Parser) MethodTestsPrompt(m *parser.Method) string {
	return strings.Join(append([]string{methodTestsPrompt}, m.Code...), "\n")
}

// ExtractComment returns the first Javadoc block of response, dedented.
func (Parser) ExtractComment(response string) ([]string, bool) {
	match := javadocPattern.FindString(normalize(response))
	if match == "" {
		return nil, false
	}
	return dedent(strings.Split(strings.TrimLeft(match, "\n"), "\n")), true
}

// ExtractTests returns every annotated test method found in response.
func (Parser) ExtractTests(response string) ([]parser.Test, bool) {
	found := testPattern.FindAllStringSubmatch(normalize(response), -1)
	if len(found) == 0 {
		return nil, false
	}
	tests := make([]parser.Test, 0, len(found))
	for _, m := range found {
		annotations := strings.Split(strings.TrimSpace(m[1]), "\n")
		decl := strings.Split(strings.TrimSpace(m[2]), "\n")
		body := strings.Split(strings.TrimSpace(m[3]), "\n")

		code := append(dedent(annotations), dedent(decl)...)
		code = append(code, dedentBody(body)...)
		tests = append(tests, parser.Test{
			Signature: strings.Join(decl, "\n"),
			Code:      code,
		})
	}
	return tests, true
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// dedent removes the indentation shared by all non-blank lines.
func dedent(lines []string) []string {
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case common <= 0:
			out[i] = l
		case len(l) >= common:
			out[i] = l[common:]
		default:
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

// dedentBody re-bases a "{ ... }" block so its closing brace sits at column
// zero. The opening brace was already trimmed.
func dedentBody(lines []string) []string {
	if len(lines) < 2 {
		return lines
	}
	last := lines[len(lines)-1]
	indent := len(last) - len(strings.TrimLeft(last, " \t"))
	out := []string{lines[0]}
	for _, l := range lines[1:] {
		if len(l) >= indent && strings.TrimSpace(l[:indent]) == "" {
			out = append(out, l[indent:])
		} else {
			out = append(out, strings.TrimLeft(l, " \t"))
		}
	}
	return out
}
