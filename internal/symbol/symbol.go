// Package symbol lifts a single named declaration out of a source file by
// brace and paren tracking. It is deliberately not a parser: the goal is
// cheap static slicing, best-effort on exotic source. Chained member access
// continued onto a new line can over-include; that is accepted.
package symbol

import (
	"regexp"
	"strings"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

// declPatterns match the start of a named declaration. Optional leading
// export/async/abstract modifiers are handled by the common prefix.
var declPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:export\s+)?interface\s+(\w+)[\s<{]`),
	regexp.MustCompile(`^(?:export\s+)?type\s+(\w+)\s*[<=]`),
	regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*[<(]`),
	regexp.MustCompile(`^(?:export\s+)?(?:abstract\s+)?class\s+(\w+)[\s{]`),
	regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*[:=]`),
	regexp.MustCompile(`^(?:export\s+)?enum\s+(\w+)\s*\{`),
}

// Extract returns the source lines of the named declaration. The declaration
// ends when brace and paren depth both return to zero and the current line
// ends with ";" or "}", or the following line does not continue with ".".
func Extract(source, name string) (string, error) {
	lines := strings.Split(source, "\n")

	start := -1
	for i, line := range lines {
		if matchesDecl(strings.TrimSpace(line), name) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", types.NewError(types.KindSymbolNotFound, "symbol %q not found", name)
	}

	braces, parens := 0, 0
	for i := start; i < len(lines); i++ {
		b, p := countDepth(lines[i])
		braces += b
		parens += p

		if braces <= 0 && parens <= 0 && declEnds(lines, i) {
			return strings.Join(lines[start:i+1], "\n"), nil
		}
	}

	// No clean end found: return everything from the start.
	return strings.Join(lines[start:], "\n"), nil
}

func matchesDecl(trimmed, name string) bool {
	for _, re := range declPatterns {
		if m := re.FindStringSubmatch(trimmed); m != nil && m[1] == name {
			return true
		}
	}
	return false
}

// countDepth tallies brace and paren deltas on a line, skipping the contents
// of single-, double-, and backtick-quoted literals with backslash escapes.
func countDepth(line string) (braces, parens int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '{':
			braces++
		case '}':
			braces--
		case '(':
			parens++
		case ')':
			parens--
		}
	}
	return braces, parens
}

func lineCanEnd(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasSuffix(t, ";") || strings.HasSuffix(t, "}")
}

// declEnds accepts line i as the declaration end if it terminates with ";"
// or "}", or the next line does not continue a member-access chain.
func declEnds(lines []string, i int) bool {
	if lineCanEnd(lines[i]) {
		return true
	}
	if i+1 >= len(lines) {
		return true
	}
	return !strings.HasPrefix(strings.TrimSpace(lines[i+1]), ".")
}
