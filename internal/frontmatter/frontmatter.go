// Package frontmatter splits an agent file into YAML front matter and body.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

const delimiter = "---"

// Parse splits text into config and body. A document opens front matter only
// when the very first line is "---"; the block ends at the next line that is
// exactly "---". Without both delimiters the whole text is the body.
func Parse(text string) (*types.Document, error) {
	doc := &types.Document{Config: types.ConfigMap{}, Body: text}

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != delimiter {
		return doc, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		// Unterminated front matter: treat the whole file as body.
		return doc, nil
	}

	block := strings.Join(lines[1:end], "\n")
	// Decode into a plain map: yaml.v3 gives nested mappings the type of the
	// target map, and nested values are handled as map[string]any.
	raw := map[string]any{}
	if strings.TrimSpace(block) != "" {
		if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
			return nil, types.WrapError(types.KindConfigurationError, err, "invalid front matter")
		}
	}
	config := types.ConfigMap(raw)
	coerceEnv(config)

	doc.Config = config
	doc.Body = strings.Join(lines[end+1:], "\n")
	return doc, nil
}

// coerceEnv stringifies scalar values under the "env" key. YAML happily
// parses PORT: 8080 as an int; child environments want strings. Only "env"
// gets this treatment; every other key keeps its parsed type.
func coerceEnv(config types.ConfigMap) {
	v, ok := config["env"]
	if !ok {
		return
	}
	switch env := v.(type) {
	case map[string]any:
		for k, val := range env {
			switch val.(type) {
			case map[string]any, []any:
			default:
				env[k] = types.CoerceString(val)
			}
		}
	case []any:
		for i, val := range env {
			switch val.(type) {
			case map[string]any, []any:
			default:
				env[i] = types.CoerceString(val)
			}
		}
	case string, nil:
	default:
		config["env"] = types.CoerceString(env)
	}
}
