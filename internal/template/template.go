// Package template adapts a Liquid engine for prompt rendering: lenient
// render plus free-variable analysis over the parsed tag stream.
package template

import (
	"regexp"
	"strings"

	"github.com/osteele/liquid"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

// standardFilters are the filter names the engine ships with; anything else
// referenced by a template is registered as a passthrough so undefined
// filters behave as no-ops.
var standardFilters = map[string]bool{
	"abs": true, "append": true, "at_least": true, "at_most": true,
	"capitalize": true, "ceil": true, "compact": true, "concat": true,
	"date": true, "default": true, "divided_by": true, "downcase": true,
	"escape": true, "escape_once": true, "first": true, "floor": true,
	"join": true, "last": true, "lstrip": true, "map": true, "minus": true,
	"modulo": true, "newline_to_br": true, "plus": true, "prepend": true,
	"remove": true, "remove_first": true, "replace": true,
	"replace_first": true, "reverse": true, "round": true, "rstrip": true,
	"size": true, "slice": true, "sort": true, "sort_natural": true,
	"split": true, "strip": true, "strip_html": true,
	"strip_newlines": true, "times": true, "truncate": true,
	"truncatewords": true, "uniq": true, "upcase": true, "url_decode": true,
	"url_encode": true, "where": true,
}

// Render substitutes variables and evaluates control flow. Undefined
// variables render as empty; undefined filters pass their input through.
func Render(body string, bindings map[string]string) (string, error) {
	engine := liquid.NewEngine()
	for _, f := range filtersUsed(body) {
		if !standardFilters[f] {
			engine.RegisterFilter(f, func(v any) any { return v })
		}
	}

	ctx := liquid.Bindings{}
	for k, v := range bindings {
		ctx[k] = v
	}

	out, err := engine.ParseAndRenderString(body, ctx)
	if err != nil {
		return "", types.WrapError(types.KindTemplateError, err, "template render failed")
	}
	return out, nil
}

var substitutePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Substitute performs plain {{ name }} replacement against the binding set,
// leaving unknown references untouched. Used for command text, where a full
// engine pass would trip on braces in shell syntax.
func Substitute(text string, bindings map[string]string) string {
	if bindings == nil {
		return text
	}
	return substitutePattern.ReplaceAllStringFunc(text, func(m string) string {
		name := substitutePattern.FindStringSubmatch(m)[1]
		if v, ok := bindings[name]; ok {
			return v
		}
		return m
	})
}

// expression keywords and literals that are never variable references.
var exprKeywords = map[string]bool{
	"true": true, "false": true, "nil": true, "null": true, "empty": true,
	"blank": true, "and": true, "or": true, "not": true, "contains": true,
	"in": true, "with": true, "forloop": true, "else": true,
}

var (
	tagPattern      = regexp.MustCompile(`\{\{-?\s*(.*?)\s*-?\}\}|\{%-?\s*(.*?)\s*-?%\}`)
	identPattern    = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_.]*`)
	stringLitPat    = regexp.MustCompile(`'[^']*'|"[^"]*"`)
	filterUsePat    = regexp.MustCompile(`\|\s*([A-Za-z_][A-Za-z0-9_]*)`)
	rawBlockPat     = regexp.MustCompile(`(?s)\{%-?\s*raw\s*-?%\}.*?\{%-?\s*endraw\s*-?%\}`)
	commentBlockPat = regexp.MustCompile(`(?s)\{%-?\s*comment\s*-?%\}.*?\{%-?\s*endcomment\s*-?%\}`)
)

// FreeVariables returns the set of root variable names referenced by the
// template that are not bound by assign, capture, for, or increment and are
// not keywords or literals. Raw and comment blocks are excluded.
func FreeVariables(body string) map[string]bool {
	body = rawBlockPat.ReplaceAllString(body, "")
	body = commentBlockPat.ReplaceAllString(body, "")

	bound := map[string]bool{}
	referenced := map[string]bool{}

	note := func(expr string) {
		expr = stringLitPat.ReplaceAllString(expr, "")
		for _, ident := range identPattern.FindAllString(expr, -1) {
			root, _, _ := strings.Cut(ident, ".")
			if exprKeywords[root] {
				continue
			}
			referenced[root] = true
		}
	}

	for _, m := range tagPattern.FindAllStringSubmatch(body, -1) {
		if m[1] != "" {
			// Output tag: the object plus filter arguments reference
			// variables; filter names do not.
			note(filterUsePat.ReplaceAllString(m[1], "|"))
			continue
		}
		tag := m[2]
		name, rest, _ := strings.Cut(tag, " ")
		rest = strings.TrimSpace(rest)
		switch name {
		case "assign":
			lhs, rhs, ok := strings.Cut(rest, "=")
			if ok {
				note(filterUsePat.ReplaceAllString(rhs, "|"))
			}
			bound[strings.TrimSpace(lhs)] = true
		case "capture", "increment", "decrement":
			bound[rest] = true
		case "for":
			loopVar, coll, ok := strings.Cut(rest, " in ")
			if ok {
				note(coll)
			}
			bound[strings.TrimSpace(loopVar)] = true
		case "if", "elsif", "unless", "case", "when":
			note(rest)
		case "cycle", "echo":
			note(filterUsePat.ReplaceAllString(rest, "|"))
		}
	}

	free := map[string]bool{}
	for name := range referenced {
		if !bound[name] {
			free[name] = true
		}
	}
	return free
}

func filtersUsed(body string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range tagPattern.FindAllStringSubmatch(body, -1) {
		expr := m[1]
		if expr == "" {
			expr = m[2]
		}
		expr = stringLitPat.ReplaceAllString(expr, "")
		for _, f := range filterUsePat.FindAllStringSubmatch(expr, -1) {
			if !seen[f[1]] {
				seen[f[1]] = true
				out = append(out, f[1])
			}
		}
	}
	return out
}
