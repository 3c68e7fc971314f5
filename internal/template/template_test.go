package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Variables(t *testing.T) {
	out, err := Render("Translate {{ _1 }} to {{ _2 }}.", map[string]string{"_1": "hola", "_2": "English"})
	require.NoError(t, err)
	assert.Equal(t, "Translate hola to English.", out)
}

func TestRender_UndefinedVariableIsEmpty(t *testing.T) {
	out, err := Render("a {{ _missing }} b", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "a  b", out)
}

func TestRender_Filters(t *testing.T) {
	out, err := Render("{{ _name | upcase }} {{ _other | default: 'fallback' }}", map[string]string{"_name": "go"})
	require.NoError(t, err)
	assert.Equal(t, "GO fallback", out)
}

func TestRender_UndefinedFilterIsNoOp(t *testing.T) {
	out, err := Render("{{ _name | frobnicate }}", map[string]string{"_name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestRender_ControlFlow(t *testing.T) {
	tmpl := "{% if _mode == 'fast' %}quick{% else %}slow{% endif %}"
	out, err := Render(tmpl, map[string]string{"_mode": "fast"})
	require.NoError(t, err)
	assert.Equal(t, "quick", out)

	out, err = Render(tmpl, map[string]string{"_mode": "careful"})
	require.NoError(t, err)
	assert.Equal(t, "slow", out)
}

func TestRender_RawPassthrough(t *testing.T) {
	out, err := Render("{% raw %}\nliteral {{ _x }}\n{% endraw %}", map[string]string{"_x": "nope"})
	require.NoError(t, err)
	assert.Contains(t, out, "literal {{ _x }}")
}

func TestRender_Assign(t *testing.T) {
	out, err := Render("{% assign who = 'team' %}hi {{ who }}", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi team", out)
}

func TestSubstitute(t *testing.T) {
	bindings := map[string]string{"_branch": "main"}
	assert.Equal(t, "git checkout main", Substitute("git checkout {{ _branch }}", bindings))
	assert.Equal(t, "echo {{ _other }}", Substitute("echo {{ _other }}", bindings))
	assert.Equal(t, "awk '{print $1}'", Substitute("awk '{print $1}'", bindings))
}

func TestFreeVariables_Basic(t *testing.T) {
	free := FreeVariables("Hello {{ _name }}, weather is {{ _sky.color }}.")
	assert.Equal(t, map[string]bool{"_name": true, "_sky": true}, free)
}

func TestFreeVariables_BoundNamesExcluded(t *testing.T) {
	body := `{% assign greeting = 'hi' %}{{ greeting }}
{% capture block %}x{% endcapture %}{{ block }}
{% for item in _items %}{{ item }}{% endfor %}
{% increment counter %}{{ counter }}`
	free := FreeVariables(body)
	assert.Equal(t, map[string]bool{"_items": true}, free)
}

func TestFreeVariables_KeywordsAndLiteralsExcluded(t *testing.T) {
	body := `{% if _a and _b or not _c contains 'x' %}{{ true }}{% endif %}
{% unless _d == 42 %}n{% endunless %}`
	free := FreeVariables(body)
	assert.Equal(t, map[string]bool{"_a": true, "_b": true, "_c": true, "_d": true}, free)
}

func TestFreeVariables_RawAndCommentExcluded(t *testing.T) {
	body := "{% raw %}{{ _hidden }}{% endraw %}{% comment %}{{ _note }}{% endcomment %}{{ _real }}"
	free := FreeVariables(body)
	assert.Equal(t, map[string]bool{"_real": true}, free)
}

func TestFreeVariables_FilterNamesExcluded(t *testing.T) {
	free := FreeVariables("{{ _v | upcase | truncate: _n }}")
	assert.Equal(t, map[string]bool{"_v": true, "_n": true}, free)
}

func TestFreeVariables_NonUnderscoreNamesIncluded(t *testing.T) {
	// Non-underscore names are reported; the caller decides they are
	// CLI-flag names rather than prompt variables.
	free := FreeVariables("{{ model }} {{ _task }}")
	assert.Equal(t, map[string]bool{"model": true, "_task": true}, free)
}
