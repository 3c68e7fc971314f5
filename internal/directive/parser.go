package directive

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// Canonical path-directive pattern: @ followed by a path starting with
	// ~, ., or /.
	pathPattern = regexp.MustCompile(`@(~?[./][^\s]+)`)

	urlPattern = regexp.MustCompile(`@(https?://[^\s]+)`)

	identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

	lineRangePattern = regexp.MustCompile(`^(.*):(\d+)-(\d+)$`)
)

// trailing punctuation that prose attaches to a path; never part of it.
const trailingPunct = ".,;:!?"

// Parse returns the ordered directive list for body. It is pure: no file,
// network, or process I/O happens here. Directives are sorted strictly
// ascending by Index and never overlap.
func Parse(body string) []Directive {
	res := scan(body)

	var out []Directive
	for _, f := range res.Fences {
		if d, ok := execFenceDirective(body, f); ok {
			out = append(out, d)
		}
	}
	for _, s := range res.Safe {
		out = append(out, parseSafeRange(body, s)...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	// Drop any later match overlapping an accepted span. Safe-range gating
	// makes this rare; multi-backtick command fences are the one case where
	// the scanner's inline classification and the command span disagree.
	kept := out[:0]
	lastEnd := -1
	for _, d := range out {
		if d.Index < lastEnd {
			continue
		}
		kept = append(kept, d)
		lastEnd = d.End()
	}
	return kept
}

// HasAny is a cheap pre-check used to skip the resolver entirely for bodies
// without a single directive candidate.
func HasAny(body string) bool {
	return len(Parse(body)) > 0
}

func parseSafeRange(body string, s span) []Directive {
	text := body[s.Start:s.End]
	var out []Directive

	for _, m := range urlPattern.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[2]:m[3]]
		url := strings.TrimRight(raw, trailingPunct)
		out = append(out, Directive{
			Kind:     KindURL,
			Index:    s.Start + m[0],
			Original: text[m[0]:m[2]] + url,
			URL:      url,
		})
	}

	for _, m := range pathPattern.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[2]:m[3]]
		d := pathDirective(s.Start+m[0], raw)
		out = append(out, d)
	}

	out = append(out, commandDirectives(body, s)...)
	return out
}

// pathDirective classifies an @path token into glob, symbol slice,
// line-range import, or plain file import.
func pathDirective(index int, raw string) Directive {
	path := strings.TrimRight(raw, trailingPunct)
	d := Directive{Index: index, Original: "@" + path}

	if strings.ContainsAny(path, "*?[") {
		d.Kind = KindGlob
		d.Path = path
		return d
	}

	if hash := strings.LastIndexByte(path, '#'); hash >= 0 {
		name := path[hash+1:]
		if identPattern.MatchString(name) {
			d.Kind = KindSymbol
			d.Path = path[:hash]
			d.Symbol = name
			return d
		}
	}

	if m := lineRangePattern.FindStringSubmatch(path); m != nil {
		start, err1 := strconv.Atoi(m[2])
		end, err2 := strconv.Atoi(m[3])
		if err1 == nil && err2 == nil {
			d.Kind = KindFile
			d.Path = m[1]
			d.StartLine = start
			d.EndLine = end
			return d
		}
	}

	d.Kind = KindFile
	d.Path = path
	return d
}

// commandDirectives finds !`...` forms whose bang sits inside the safe span.
// The backtick fence is one or more backticks; the content may contain runs
// shorter than the fence and must close on the same line.
func commandDirectives(body string, s span) []Directive {
	var out []Directive
	for i := s.Start; i < s.End; i++ {
		if body[i] != '!' || i+1 >= len(body) || body[i+1] != '`' {
			continue
		}
		fence := 0
		for i+1+fence < len(body) && body[i+1+fence] == '`' {
			fence++
		}
		contentStart := i + 1 + fence
		closer := strings.Repeat("`", fence)
		end := -1
		for j := contentStart; j+fence <= len(body); j++ {
			if body[j] == '\n' {
				break
			}
			if body[j:j+fence] == closer && (j+fence == len(body) || body[j+fence] != '`') {
				end = j
				break
			}
		}
		if end < 0 {
			continue
		}
		text := body[contentStart:end]
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, Directive{
			Kind:     KindCommand,
			Index:    i,
			Original: body[i : end+fence],
			Text:     text,
		})
		i = end + fence - 1
	}
	return out
}

// execFenceDirective recognizes a top-level fenced block whose first code
// line is a shebang. Nested fences never reach here: the scanner only
// records blocks opened from normal context.
func execFenceDirective(body string, f fencedBlock) (Directive, bool) {
	if !f.Closed || f.CodeStart >= f.CodeEnd {
		return Directive{}, false
	}
	code := body[f.CodeStart:f.CodeEnd]
	firstLine, rest, _ := strings.Cut(code, "\n")
	firstLine = strings.TrimSuffix(firstLine, "\r")
	if !strings.HasPrefix(firstLine, "#!") {
		return Directive{}, false
	}

	lang := ""
	if fields := strings.Fields(f.Info); len(fields) > 0 {
		lang = fields[0]
	}

	return Directive{
		Kind:     KindExecFence,
		Index:    f.Start,
		Original: body[f.Start:f.End],
		Info:     f.Info,
		Lang:     lang,
		Shebang:  firstLine,
		Code:     strings.TrimSuffix(rest, "\n"),
	}, true
}
